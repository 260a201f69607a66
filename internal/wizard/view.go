package wizard

import (
	"github.com/shopspring/decimal"

	"github.com/skatezo/shopflow/internal/domain/address"
	"github.com/skatezo/shopflow/internal/domain/catalog"
	"github.com/skatezo/shopflow/internal/domain/pricing"
)

// Presenter receives render instructions from the wizard. Implementations
// own the actual surface (terminal, test recorder); the wizard never
// touches presentation directly.
type Presenter interface {
	// ShowProduct renders the variant-selection step.
	ShowProduct(view ProductView)
	// ShowPricing renders the current price quote. Called whenever a
	// price calculation completes.
	ShowPricing(view PricingView)
	// ShowAddresses renders the address-selection step.
	ShowAddresses(view AddressView)
	// ShowCouponStatus renders inline coupon feedback next to the coupon
	// input, without leaving the address step.
	ShowCouponStatus(applied bool, message string)
	// ShowLoading and HideLoading bracket a blocking fetch.
	ShowLoading(message string)
	HideLoading()
	// ShowError renders a transient error overlay. The wizard state is
	// unchanged underneath it.
	ShowError(message string)
}

// ProductView is everything the variant-selection step renders.
type ProductView struct {
	Product catalog.Product
	Colors  []catalog.Color
	Sizes   []catalog.Size

	SelectedColorID string
	SelectedSizeID  string
	// DisabledSizeIDs lists sizes with no purchasable variant for the
	// selected color. Empty when no color is selected.
	DisabledSizeIDs []string

	// Variant is the resolved selection, nil until both color and size
	// point at a purchasable variant.
	Variant  *catalog.Variant
	Quantity int

	// Price is the variant's effective price when resolved, otherwise the
	// product's base price.
	Price decimal.Decimal
	// CanProceed reports whether the address step is reachable.
	CanProceed bool
}

// PricingView is a server-computed price breakdown.
type PricingView struct {
	Quote    pricing.Quote
	Discount *pricing.Discount
	Coupon   pricing.Coupon
}

// AddressView is everything the address-selection step renders.
type AddressView struct {
	Addresses  []address.Address
	SelectedID string
	CanConfirm bool
}
