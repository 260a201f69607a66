package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrVariantNotFound is returned when no variant exists for a color/size pair.
var ErrVariantNotFound = errors.New("variant not found")

// Product is the catalog item a purchase flow starts from. Prices are
// server-rendered decimals; the client only displays them.
type Product struct {
	ID              string
	Name            string
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal
	TotalStock      int
	ImageURL        string
	HasVariants     bool
	InStock         bool
}

// HasDiscount reports whether the product carries a discounted price.
func (p Product) HasDiscount() bool {
	return p.DiscountedPrice.IsPositive()
}

// Color is a selectable color option.
type Color struct {
	ID      string
	Name    string
	HexCode string
}

// Size is a selectable size option.
type Size struct {
	ID   string
	Name string
}

// Variant is a purchasable color/size combination with its own price and
// stock. A variant is identified both by its own ID (used on the wire for
// pricing and checkout) and by the composite (color, size) key used for
// resolution during selection.
type Variant struct {
	ID              string
	ColorID         string
	SizeID          string
	Price           decimal.Decimal
	DiscountedPrice decimal.Decimal
	Stock           int
	InStock         bool
	LowStock        bool
}

// HasDiscount reports whether the variant carries a discounted price.
func (v Variant) HasDiscount() bool {
	return v.DiscountedPrice.IsPositive()
}

// EffectivePrice is the price the shopper actually pays: the discounted
// price when one exists, the regular price otherwise.
func (v Variant) EffectivePrice() decimal.Decimal {
	if v.HasDiscount() {
		return v.DiscountedPrice
	}
	return v.Price
}

// VariantMap indexes variants by their composite "{colorID}_{sizeID}" key,
// mirroring how the product-details endpoint ships them.
type VariantMap map[string]Variant

// Key builds the composite lookup key for a color/size pair.
func Key(colorID, sizeID string) string {
	return colorID + "_" + sizeID
}

// Resolve looks up the variant for the given color and size. The boolean is
// false when no such combination exists.
func (m VariantMap) Resolve(colorID, sizeID string) (Variant, bool) {
	v, ok := m[Key(colorID, sizeID)]
	return v, ok
}

// SizeAvailable reports whether the given size can be selected while the
// given color is active: the combination must exist and be in stock.
func (m VariantMap) SizeAvailable(colorID, sizeID string) bool {
	v, ok := m.Resolve(colorID, sizeID)
	return ok && v.InStock
}

// DisabledSizes returns the IDs of sizes that must be rendered
// non-interactive for the given color, preserving the order of sizes.
func (m VariantMap) DisabledSizes(colorID string, sizes []Size) []string {
	var disabled []string
	for _, s := range sizes {
		if !m.SizeAvailable(colorID, s.ID) {
			disabled = append(disabled, s.ID)
		}
	}
	return disabled
}

// ClampQuantity forces q into [1, stock]. A non-positive stock still yields
// a floor of 1 so the UI always shows a sane value.
func ClampQuantity(q, stock int) int {
	if q < 1 {
		q = 1
	}
	if stock >= 1 && q > stock {
		q = stock
	}
	return q
}
