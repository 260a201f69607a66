package wizard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/skatezo/shopflow/internal/api"
	"github.com/skatezo/shopflow/internal/domain/address"
	"github.com/skatezo/shopflow/internal/domain/catalog"
	"github.com/skatezo/shopflow/internal/domain/pricing"
)

// Backend is the slice of the storefront API the wizard needs.
// *api.Client satisfies it.
type Backend interface {
	GetProductDetails(ctx context.Context, productID string) (*api.ProductDetails, error)
	CalculateTotal(ctx context.Context, variantID string, quantity int, couponCode string) (*api.PriceResult, error)
	ListAddresses(ctx context.Context) ([]address.Address, error)
	SaveOrderAddress(ctx context.Context, form *address.Form) error
}

// ReviewPath is where Confirm hands the flow off to.
const ReviewPath = "/orders/review/"

// Wizard drives the multi-step purchase flow: variant selection, pricing,
// address selection, coupon application and the final checkout handoff.
// All pricing is server-computed; the wizard only orchestrates fetches and
// renders through its Presenter.
//
// Methods are safe for concurrent use. The Presenter is called with the
// wizard's lock held and must not call back into the wizard.
type Wizard struct {
	backend Backend
	present Presenter

	mu    sync.Mutex
	state State
	// gen is bumped on Close so responses that land after teardown are
	// discarded instead of mutating a reset wizard.
	gen uint64

	details  *api.ProductDetails
	colorID  string
	sizeID   string
	variant  *catalog.Variant
	quantity int

	coupon   pricing.Coupon
	quote    *pricing.Quote
	discount *pricing.Discount

	addresses []address.Address
	addressID string
}

// New builds a wizard over the given backend and presenter.
func New(backend Backend, present Presenter) *Wizard {
	return &Wizard{
		backend: backend,
		present: present,
		state:   StateClosed,
	}
}

// State reports the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Quantity reports the current quantity.
func (w *Wizard) Quantity() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.quantity
}

// Coupon reports the coupon state. A coupon stays applied across variant
// and quantity changes: every price recalculation resubmits its code, so
// the server re-validates it against the new combination.
func (w *Wizard) Coupon() pricing.Coupon {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coupon
}

// Open starts a purchase flow for the given product. A second Open while a
// flow is active is rejected with ErrAlreadyOpen; the active flow is
// untouched. When the product has exactly one color it is pre-selected, and
// likewise a single size, so a single-variant product lands directly on a
// resolved selection with its price fetched.
func (w *Wizard) Open(ctx context.Context, productID string) error {
	w.mu.Lock()
	if w.state != StateClosed {
		w.mu.Unlock()
		return ErrAlreadyOpen
	}
	w.state = StateProductLoading
	gen := w.gen
	w.mu.Unlock()

	w.present.ShowLoading("Loading product details...")
	details, err := w.backend.GetProductDetails(ctx, productID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return nil
	}
	w.present.HideLoading()
	if err != nil {
		w.state = StateClosed
		w.present.ShowError(userMessage(err))
		return errors.Wrap(err, "load product details")
	}

	w.details = details
	w.colorID, w.sizeID, w.variant = "", "", nil
	w.quantity = 1
	w.coupon = pricing.Coupon{}
	w.quote, w.discount = nil, nil
	w.addresses, w.addressID = nil, ""
	w.state = StateVariantSelection
	w.present.ShowProduct(w.productView())

	if len(details.Colors) == 1 {
		if err := w.selectColorLocked(details.Colors[0].ID); err != nil {
			return err
		}
		if len(details.Sizes) == 1 {
			if err := w.selectSizeLocked(ctx, details.Sizes[0].ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// SelectColor picks a color, clearing any size selection. Sizes without a
// purchasable variant for this color are reported as disabled in the view.
// No network call is made.
func (w *Wizard) SelectColor(colorID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateVariantSelection {
		return ErrInvalidState
	}
	return w.selectColorLocked(colorID)
}

func (w *Wizard) selectColorLocked(colorID string) error {
	if !hasColor(w.details.Colors, colorID) {
		return errors.Wrap(ErrUnknownOption, "color "+colorID)
	}
	w.colorID = colorID
	w.sizeID = ""
	w.variant = nil
	w.present.ShowProduct(w.productView())
	return nil
}

// SelectSize picks a size for the chosen color. When the pair resolves to a
// purchasable variant, the quantity is clamped to its stock and a price
// calculation is issued. A pair with no purchasable variant leaves the
// selection unresolved; proceeding stays disabled.
func (w *Wizard) SelectSize(ctx context.Context, sizeID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateVariantSelection {
		return ErrInvalidState
	}
	return w.selectSizeLocked(ctx, sizeID)
}

func (w *Wizard) selectSizeLocked(ctx context.Context, sizeID string) error {
	if w.colorID == "" {
		w.present.ShowError(ErrNoColor.Error())
		return ErrNoColor
	}
	if !hasSize(w.details.Sizes, sizeID) {
		return errors.Wrap(ErrUnknownOption, "size "+sizeID)
	}
	w.sizeID = sizeID
	if v, ok := w.details.Variants.Resolve(w.colorID, sizeID); ok && v.InStock {
		w.variant = &v
		w.quantity = catalog.ClampQuantity(w.quantity, v.Stock)
	} else {
		w.variant = nil
	}
	w.present.ShowProduct(w.productView())
	if w.variant != nil {
		w.recalculate(ctx)
	}
	return nil
}

// ChangeQuantity adjusts the quantity by delta. See SetQuantity.
func (w *Wizard) ChangeQuantity(ctx context.Context, delta int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setQuantityLocked(ctx, w.quantity+delta)
}

// SetQuantity sets the quantity outright. A value below 1 or above the
// resolved variant's stock is rejected with a *QuantityError: the selection
// is untouched and no price calculation is issued. An accepted value
// triggers a recalculation that resubmits any applied coupon.
func (w *Wizard) SetQuantity(ctx context.Context, quantity int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setQuantityLocked(ctx, quantity)
}

func (w *Wizard) setQuantityLocked(ctx context.Context, quantity int) error {
	if w.state != StateVariantSelection {
		return ErrInvalidState
	}
	if w.variant == nil {
		w.present.ShowError(ErrNoVariant.Error())
		return ErrNoVariant
	}
	if quantity < 1 || quantity > w.variant.Stock {
		err := &QuantityError{Requested: quantity, Stock: w.variant.Stock}
		w.present.ShowError(err.Error())
		return err
	}
	if quantity == w.quantity {
		return nil
	}
	w.quantity = quantity
	w.present.ShowProduct(w.productView())
	w.recalculate(ctx)
	return nil
}

// recalculate fetches the authoritative price for the current selection,
// resubmitting any applied coupon code. A failure keeps the last quote and
// is logged rather than surfaced; the flow stays usable.
// Called with w.mu held; releases it around the network call.
func (w *Wizard) recalculate(ctx context.Context) {
	gen := w.gen
	variantID := w.variant.ID
	quantity := w.quantity
	code := w.coupon.Code
	w.mu.Unlock()
	res, err := w.backend.CalculateTotal(ctx, variantID, quantity, code)
	w.mu.Lock()
	if w.gen != gen {
		return
	}
	if err != nil {
		zctx.From(ctx).Warn("Price calculation failed",
			zap.String("variant_id", variantID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return
	}
	quote := res.Quote
	w.quote = &quote
	w.discount = res.Discount
	w.present.ShowPricing(w.pricingView())
}

// ProceedToAddress moves to the address step. Requires a resolved,
// purchasable variant. On a fetch failure the wizard returns to variant
// selection with everything intact.
func (w *Wizard) ProceedToAddress(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateVariantSelection {
		return ErrInvalidState
	}
	if w.variant == nil || !w.variant.InStock {
		w.present.ShowError(ErrNoVariant.Error())
		return ErrNoVariant
	}
	w.state = StateAddressLoading
	return w.loadAddressesLocked(ctx, StateVariantSelection)
}

// loadAddressesLocked fetches the address list and enters address
// selection. The previously selected address is kept when it still exists;
// otherwise the account's default address is pre-selected. On failure the
// wizard falls back to fallbackState.
// Called with w.mu held; releases it around the network call.
func (w *Wizard) loadAddressesLocked(ctx context.Context, fallbackState State) error {
	gen := w.gen
	w.mu.Unlock()
	w.present.ShowLoading("Loading addresses...")
	addrs, err := w.backend.ListAddresses(ctx)
	w.mu.Lock()
	if w.gen != gen {
		return nil
	}
	w.present.HideLoading()
	if err != nil {
		w.state = fallbackState
		w.present.ShowError(userMessage(err))
		return errors.Wrap(err, "load addresses")
	}
	w.addresses = addrs
	if !hasAddress(addrs, w.addressID) {
		w.addressID = ""
		for _, a := range addrs {
			if a.IsDefault {
				w.addressID = a.ID
				break
			}
		}
	}
	w.state = StateAddressSelection
	w.present.ShowAddresses(w.addressView())
	return nil
}

// Back returns from address selection to variant selection. The variant,
// quantity, applied coupon and address choice all survive the round trip.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAddressSelection {
		return ErrInvalidState
	}
	w.state = StateVariantSelection
	w.present.ShowProduct(w.productView())
	if w.quote != nil {
		w.present.ShowPricing(w.pricingView())
	}
	return nil
}

// SelectAddress picks a delivery address from the loaded list.
func (w *Wizard) SelectAddress(addressID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAddressSelection {
		return ErrInvalidState
	}
	if !hasAddress(w.addresses, addressID) {
		return errors.Wrap(ErrUnknownOption, "address "+addressID)
	}
	w.addressID = addressID
	w.present.ShowAddresses(w.addressView())
	return nil
}

// ApplyCoupon submits a coupon code for the current selection. The server
// is the sole judge: a rejection surfaces its message inline via
// ShowCouponStatus and leaves the prior coupon and quote untouched. An
// accepted coupon replaces the quote and sticks to later recalculations.
func (w *Wizard) ApplyCoupon(ctx context.Context, code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAddressSelection {
		return ErrInvalidState
	}
	code = strings.TrimSpace(code)
	if code == "" {
		w.present.ShowError(ErrEmptyCoupon.Error())
		return ErrEmptyCoupon
	}

	gen := w.gen
	variantID := w.variant.ID
	quantity := w.quantity
	w.mu.Unlock()
	res, err := w.backend.CalculateTotal(ctx, variantID, quantity, code)
	w.mu.Lock()
	if w.gen != gen {
		return nil
	}
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			w.present.ShowCouponStatus(false, apiErr.Message)
		} else {
			w.present.ShowError(userMessage(err))
		}
		return errors.Wrap(err, "apply coupon")
	}
	w.coupon = pricing.Coupon{Code: code, Applied: true}
	quote := res.Quote
	w.quote = &quote
	w.discount = res.Discount
	w.present.ShowCouponStatus(true, "Coupon applied successfully!")
	w.present.ShowPricing(w.pricingView())
	return nil
}

// SaveAddress validates and saves a new delivery address, then reloads the
// address list. Validation failures never reach the network. The saved
// address becomes selectable immediately; if the account marks it default,
// reloading pre-selects it.
func (w *Wizard) SaveAddress(ctx context.Context, form *address.Form) error {
	if err := form.Validate(); err != nil {
		var ve *address.ValidationError
		if errors.As(err, &ve) && len(ve.Fields) > 0 {
			w.present.ShowError(ve.Fields[0].Message)
		} else {
			w.present.ShowError(err.Error())
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAddressSelection {
		return ErrInvalidState
	}
	gen := w.gen
	w.mu.Unlock()
	err := w.backend.SaveOrderAddress(ctx, form)
	w.mu.Lock()
	if w.gen != gen {
		return nil
	}
	if err != nil {
		w.present.ShowError(userMessage(err))
		return errors.Wrap(err, "save address")
	}
	w.state = StateAddressLoading
	return w.loadAddressesLocked(ctx, StateAddressSelection)
}

// CanConfirm reports whether the checkout handoff is available.
func (w *Wizard) CanConfirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canConfirmLocked()
}

func (w *Wizard) canConfirmLocked() bool {
	return w.state == StateAddressSelection &&
		w.variant != nil && w.variant.InStock &&
		w.addressID != ""
}

// Confirm hands the flow off to order review. It returns the relative
// review URL carrying the variant, quantity, address and any applied coupon
// code; the wizard enters its terminal state and carries nothing else over.
func (w *Wizard) Confirm() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAddressSelection {
		return "", ErrInvalidState
	}
	if !w.canConfirmLocked() {
		w.present.ShowError(ErrIncomplete.Error())
		return "", ErrIncomplete
	}
	q := url.Values{}
	q.Set("variant_id", w.variant.ID)
	q.Set("quantity", strconv.Itoa(w.quantity))
	q.Set("address_id", w.addressID)
	if w.coupon.Applied {
		q.Set("coupon_code", w.coupon.Code)
	}
	w.state = StateRedirecting
	return ReviewPath + "?" + q.Encode(), nil
}

// Close tears the flow down from any state and discards all selections.
// Responses from fetches still in flight are dropped when they land.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return
	}
	w.gen++
	w.state = StateClosed
	w.details = nil
	w.colorID, w.sizeID, w.variant = "", "", nil
	w.quantity = 0
	w.coupon = pricing.Coupon{}
	w.quote, w.discount = nil, nil
	w.addresses, w.addressID = nil, ""
}

func (w *Wizard) productView() ProductView {
	view := ProductView{
		Product:         w.details.Product,
		Colors:          w.details.Colors,
		Sizes:           w.details.Sizes,
		SelectedColorID: w.colorID,
		SelectedSizeID:  w.sizeID,
		Variant:         w.variant,
		Quantity:        w.quantity,
		CanProceed:      w.variant != nil && w.variant.InStock,
	}
	if w.colorID != "" {
		view.DisabledSizeIDs = w.details.Variants.DisabledSizes(w.colorID, w.details.Sizes)
	}
	switch {
	case w.variant != nil:
		view.Price = w.variant.EffectivePrice()
	case w.details.Product.HasDiscount():
		view.Price = w.details.Product.DiscountedPrice
	default:
		view.Price = w.details.Product.BasePrice
	}
	return view
}

func (w *Wizard) pricingView() PricingView {
	return PricingView{
		Quote:    *w.quote,
		Discount: w.discount,
		Coupon:   w.coupon,
	}
}

func (w *Wizard) addressView() AddressView {
	return AddressView{
		Addresses:  w.addresses,
		SelectedID: w.addressID,
		CanConfirm: w.canConfirmLocked(),
	}
}

func errMsgStock(stock int) string {
	return fmt.Sprintf("Only %d items available", stock)
}

// userMessage maps an error to the text shown to the user. Server-judged
// failures keep the server's wording; everything else collapses to a
// generic network message.
func userMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Network error occurred"
}

func hasColor(colors []catalog.Color, id string) bool {
	for _, c := range colors {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasSize(sizes []catalog.Size, id string) bool {
	for _, s := range sizes {
		if s.ID == id {
			return true
		}
	}
	return false
}

func hasAddress(addrs []address.Address, id string) bool {
	if id == "" {
		return false
	}
	for _, a := range addrs {
		if a.ID == id {
			return true
		}
	}
	return false
}
