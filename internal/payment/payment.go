// Package payment handles the checkout handoff to the payment gateway and
// the verification of its completion callback.
package payment

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/internal/api"
)

// Backend is the slice of the storefront API the handoff needs.
type Backend interface {
	VerifyPayment(ctx context.Context, cb api.PaymentCallback) (string, error)
}

// Errors surfaced before anything reaches the server.
var (
	// ErrIncompleteCallback reports a gateway callback missing one of its
	// identifiers.
	ErrIncompleteCallback = errors.New("payment callback is missing required fields")
	// ErrBadCheckout reports unusable server-supplied checkout parameters;
	// the widget must not be opened with them.
	ErrBadCheckout = errors.New("invalid checkout parameters")
	// ErrOrderMismatch reports a callback for a different order than the
	// one the widget was opened for.
	ErrOrderMismatch = errors.New("callback order does not match the open checkout")
)

// CheckoutParams are the server-supplied values the payment widget is
// opened with. Amount is in the currency's minor unit.
type CheckoutParams struct {
	KeyID       string
	OrderID     string
	Amount      int64
	Currency    string
	Name        string
	Description string

	PrefillName    string
	PrefillEmail   string
	PrefillContact string
}

// Validate reports whether the parameters are usable by the widget.
func (p CheckoutParams) Validate() error {
	switch {
	case p.KeyID == "":
		return errors.Wrap(ErrBadCheckout, "missing key id")
	case p.OrderID == "":
		return errors.Wrap(ErrBadCheckout, "missing order id")
	case p.Amount < 1:
		return errors.Wrap(ErrBadCheckout, "amount must be positive")
	case p.Currency == "":
		return errors.Wrap(ErrBadCheckout, "missing currency")
	}
	return nil
}

// Outcome is where a verified payment sends the shopper. RedirectURL is
// preferred; Reload is the fallback when the server confirms the payment
// but names no destination.
type Outcome struct {
	RedirectURL string
	Reload      bool
}

// Handoff holds the checkout the widget was opened with and verifies the
// gateway callback against it. The server is the sole judge of the
// signature; the client only checks that the callback is complete and
// belongs to the open checkout before forwarding it.
type Handoff struct {
	backend Backend
	open    *CheckoutParams
}

// New builds a handoff over the given backend.
func New(backend Backend) *Handoff {
	return &Handoff{backend: backend}
}

// Begin validates the server-supplied checkout parameters and records the
// order the widget is being opened for. Defective parameters return
// ErrBadCheckout and leave nothing open.
func (h *Handoff) Begin(params CheckoutParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	h.open = &params
	return nil
}

// Open returns the parameters of the current checkout, or nil when no
// widget is open.
func (h *Handoff) Open() *CheckoutParams {
	return h.open
}

// Complete forwards the gateway callback for verification and reports
// where to send the shopper. A failed verification surfaces the server's
// error; the order stays pending on the server side.
func (h *Handoff) Complete(ctx context.Context, cb api.PaymentCallback) (*Outcome, error) {
	if cb.PaymentID == "" || cb.OrderID == "" || cb.Signature == "" {
		return nil, ErrIncompleteCallback
	}
	if h.open != nil && h.open.OrderID != cb.OrderID {
		return nil, ErrOrderMismatch
	}
	redirectURL, err := h.backend.VerifyPayment(ctx, cb)
	if err != nil {
		return nil, errors.Wrap(err, "verify payment")
	}
	h.open = nil
	if redirectURL == "" {
		return &Outcome{Reload: true}, nil
	}
	return &Outcome{RedirectURL: redirectURL}, nil
}
