package api

import "context"

// PaymentCallback is the payload the payment widget hands back on
// completion. All three identifiers are opaque to the client and forwarded
// verbatim for server-side signature verification.
type PaymentCallback struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment posts the widget callback to /orders/verify-payment/ and
// returns the URL to redirect to on success. Verification failure surfaces
// as *APIError with the server's reason.
func (c *Client) VerifyPayment(ctx context.Context, cb PaymentCallback) (redirectURL string, err error) {
	var resp struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := c.postJSON(ctx, "/orders/verify-payment/", cb, &resp); err != nil {
		return "", err
	}
	return resp.RedirectURL, nil
}
