package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOPFLOW_ prefix), flags, or YAML config files.
type Config struct {
	BaseURL       string        `usage:"Storefront origin URL (SHOPFLOW_BASE_URL or STOREFRONT_URL)" flag:"base-url"`
	Timeout       time.Duration `default:"30s" usage:"HTTP request timeout"`
	SessionCookie string        `usage:"Authenticated session cookie value (sessionid)" flag:"session-cookie"`
	CSRFToken     string        `usage:"CSRF token cookie value (csrftoken)" flag:"csrf-token"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOPFLOW",
		Files:     []string{"config.yaml", "/etc/shopflow/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.BaseURL == "" {
		return nil, errors.New("storefront URL is required: set SHOPFLOW_BASE_URL or STOREFRONT_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps unprefixed environment variables shared with
// other storefront tooling onto the SHOPFLOW_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.BaseURL == "" {
		if v := os.Getenv("STOREFRONT_URL"); v != "" {
			c.BaseURL = v
		}
	}
	if c.SessionCookie == "" {
		if v := os.Getenv("STOREFRONT_SESSION"); v != "" {
			c.SessionCookie = v
		}
	}
}
