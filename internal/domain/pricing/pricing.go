package pricing

import "github.com/shopspring/decimal"

// Quote is the server-authoritative price breakdown for a given
// (variant, quantity, coupon) triple. The client never derives any of these
// figures locally; a new Quote always replaces the previous one wholesale.
type Quote struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Quantity       int
}

// FreeShipping reports whether the quote carries no shipping charge.
func (q Quote) FreeShipping() bool {
	return q.ShippingCost.IsZero()
}

// Discount describes an applied coupon as echoed back by the pricing
// endpoint.
type Discount struct {
	Code        string
	Amount      decimal.Decimal
	Description string
}

// Coupon is the client-held coupon state: the code the shopper entered and
// whether the server accepted it. An applied coupon survives variant and
// quantity changes and is re-validated by the next price calculation.
type Coupon struct {
	Code    string
	Applied bool
}
