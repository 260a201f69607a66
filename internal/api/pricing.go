package api

import (
	"context"

	"github.com/skatezo/shopflow/internal/domain/pricing"
)

// PriceResult is the server-computed breakdown for one
// (variant, quantity, coupon) combination. Discount is nil when no coupon
// was accepted.
type PriceResult struct {
	Quote    pricing.Quote
	Discount *pricing.Discount
}

// CalculateTotal posts to /orders/calculate-total/ and returns the
// authoritative pricing for the given variant, quantity and optional coupon
// code. An invalid coupon surfaces as *APIError with the server's message;
// the client never judges coupons locally.
func (c *Client) CalculateTotal(ctx context.Context, variantID string, quantity int, couponCode string) (*PriceResult, error) {
	req := struct {
		VariantID  string `json:"variant_id"`
		Quantity   int    `json:"quantity"`
		CouponCode string `json:"coupon_code"`
	}{
		VariantID:  variantID,
		Quantity:   quantity,
		CouponCode: couponCode,
	}

	var resp struct {
		Pricing struct {
			Subtotal       Money `json:"subtotal"`
			DiscountAmount Money `json:"discount_amount"`
			ShippingCost   Money `json:"shipping_cost"`
			TaxAmount      Money `json:"tax_amount"`
			TotalAmount    Money `json:"total_amount"`
			Quantity       int   `json:"quantity"`
		} `json:"pricing"`
		Discount *struct {
			Code        string `json:"code"`
			Amount      Money  `json:"amount"`
			Description string `json:"description"`
		} `json:"discount"`
	}
	if err := c.postJSON(ctx, "/orders/calculate-total/", req, &resp); err != nil {
		return nil, err
	}

	result := &PriceResult{
		Quote: pricing.Quote{
			Subtotal:       resp.Pricing.Subtotal.Decimal,
			DiscountAmount: resp.Pricing.DiscountAmount.Decimal,
			ShippingCost:   resp.Pricing.ShippingCost.Decimal,
			TaxAmount:      resp.Pricing.TaxAmount.Decimal,
			TotalAmount:    resp.Pricing.TotalAmount.Decimal,
			Quantity:       resp.Pricing.Quantity,
		},
	}
	if resp.Discount != nil {
		result.Discount = &pricing.Discount{
			Code:        resp.Discount.Code,
			Amount:      resp.Discount.Amount.Decimal,
			Description: resp.Discount.Description,
		}
	}
	return result, nil
}
