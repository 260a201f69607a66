// Package api implements the JSON-over-HTTP client for the storefront
// endpoints: product details, price calculation, addresses, wishlist, cart,
// scheduled purchases and payment verification.
//
// Every call is classified on failure into exactly one of the error types in
// errors.go: *StatusError (non-2xx), *DecodeError (non-JSON or malformed
// body) or *APIError (success:false with a server message). No call retries
// automatically; retrying is always the shopper's gesture.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/pkg/httpx"
)

const (
	// csrfCookie is the session cookie carrying the CSRF token.
	csrfCookie = "csrftoken"
	// csrfHeader is the per-request header the token is echoed into.
	csrfHeader = "X-CSRFToken"

	// maxBodyBytes caps how much of a response body is read. Storefront
	// payloads are small; anything larger is a protocol mismatch.
	maxBodyBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the storefront origin, e.g. "https://shop.example.com".
	BaseURL string
	// HTTPClient overrides the default client. When nil, a client with a
	// fresh cookie jar and the full httpx middleware chain is built.
	HTTPClient *http.Client
}

// Client is the storefront API client. It is safe for concurrent use; the
// flow controllers built on top of it are not, by contract.
type Client struct {
	http *http.Client
	base *url.URL
}

// New creates a Client for the given storefront origin.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "create cookie jar")
		}
		hc = &http.Client{
			Jar: jar,
			Transport: httpx.Wrap(nil,
				httpx.RequestID(),
				httpx.DefaultHeaders(map[string]string{
					"X-Requested-With": "XMLHttpRequest",
				}),
				httpx.CSRF(csrfCookie, csrfHeader),
				httpx.LogRequests(),
				httpx.Instrument("storefront"),
			),
		}
	}

	return &Client{http: hc, base: base}, nil
}

// HTTPClient exposes the underlying client, mainly so callers can seed the
// cookie jar with an authenticated session.
func (c *Client) HTTPClient() *http.Client { return c.http }

// BaseURL returns the storefront origin the client talks to.
func (c *Client) BaseURL() *url.URL { return c.base }

// envelope is the common response wrapper: every endpoint reports success
// plus a message under either "error" or "message".
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path, query), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path, nil), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

// do executes the request and applies the error taxonomy. On success the
// body is decoded into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "storefront request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Snippet: snippet(body)}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		return &DecodeError{ContentType: ct}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &DecodeError{ContentType: ct, Err: err}
	}
	if !env.Success {
		return &APIError{Message: env.text()}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{ContentType: ct, Err: err}
	}
	return nil
}

// snippet trims a body to a short diagnostic prefix.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}
