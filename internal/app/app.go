package app

import (
	"context"
	"net/http"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/skatezo/shopflow/internal/addressbook"
	"github.com/skatezo/shopflow/internal/api"
	"github.com/skatezo/shopflow/internal/cartpicker"
	"github.com/skatezo/shopflow/internal/cli"
	"github.com/skatezo/shopflow/internal/payment"
	"github.com/skatezo/shopflow/internal/scheduler"
	"github.com/skatezo/shopflow/internal/wishlist"
	"github.com/skatezo/shopflow/internal/wizard"
)

// Run creates all dependencies and starts the interactive shell. It is the
// single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("base_url", cfg.BaseURL))

	client, err := api.New(api.Config{BaseURL: cfg.BaseURL})
	if err != nil {
		return errors.Wrap(err, "create api client")
	}
	client.HTTPClient().Timeout = cfg.Timeout

	// Seed the cookie jar with an authenticated session when one is
	// configured. The CSRF middleware echoes the csrftoken cookie into the
	// X-CSRFToken header on every request.
	var cookies []*http.Cookie
	if cfg.SessionCookie != "" {
		cookies = append(cookies, &http.Cookie{Name: "sessionid", Value: cfg.SessionCookie, Path: "/"})
	}
	if cfg.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: "csrftoken", Value: cfg.CSRFToken, Path: "/"})
	}
	if len(cookies) > 0 {
		client.HTTPClient().Jar.SetCookies(client.BaseURL(), cookies)
	}

	presenter := cli.NewPresenter(os.Stdout)
	shell := cli.New(cli.Components{
		Wizard:    wizard.New(client, presenter),
		Wishlist:  wishlist.New(client),
		Cart:      cartpicker.New(client),
		Scheduler: scheduler.New(client),
		Addresses: addressbook.New(client),
		Payment:   payment.New(client),
	}, os.Stdin, os.Stdout)

	lg.Info("Shell ready")
	return shell.Run(ctx)
}
