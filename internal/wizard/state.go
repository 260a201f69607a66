package wizard

import "github.com/go-faster/errors"

// State is the wizard's position in the purchase flow. Price calculation
// and coupon application are in-flight phases of VariantSelection and
// AddressSelection rather than states of their own; errors are transient
// overlays that resume the prior state.
type State int

const (
	// StateClosed means no purchase flow is active.
	StateClosed State = iota
	// StateProductLoading covers the initial product-details fetch.
	StateProductLoading
	// StateVariantSelection is the color/size/quantity step.
	StateVariantSelection
	// StateAddressLoading covers the address-list fetch.
	StateAddressLoading
	// StateAddressSelection is the address + coupon step.
	StateAddressSelection
	// StateRedirecting is terminal: the review URL has been handed out and
	// the wizard's state is abandoned, not serialized.
	StateRedirecting
)

var stateNames = map[State]string{
	StateClosed:           "closed",
	StateProductLoading:   "product_loading",
	StateVariantSelection: "variant_selection",
	StateAddressLoading:   "address_loading",
	StateAddressSelection: "address_selection",
	StateRedirecting:      "redirecting",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Sentinel errors for invalid gestures. Each carries the user-facing text
// the presenter shows.
var (
	// ErrAlreadyOpen rejects a second Open while a flow is active.
	ErrAlreadyOpen = errors.New("a purchase flow is already open")
	// ErrInvalidState rejects an operation outside its valid state.
	ErrInvalidState = errors.New("operation not valid in current step")
	// ErrNoVariant rejects quantity and coupon gestures before a variant
	// is resolved.
	ErrNoVariant = errors.New("Please select color and size first")
	// ErrNoColor rejects size selection before a color is chosen.
	ErrNoColor = errors.New("Please select a color first")
	// ErrEmptyCoupon rejects an empty coupon submission.
	ErrEmptyCoupon = errors.New("Please enter a coupon code")
	// ErrIncomplete rejects Confirm without a resolved variant and a
	// selected address.
	ErrIncomplete = errors.New("Please complete all selections")
	// ErrUnknownOption rejects selection of a color, size or address that
	// is not part of the loaded data.
	ErrUnknownOption = errors.New("unknown option")
)

// QuantityError reports a rejected quantity change. The selection is left
// untouched and no network call is made.
type QuantityError struct {
	Requested int
	Stock     int
}

func (e *QuantityError) Error() string {
	if e.Requested < 1 {
		return "Quantity cannot be less than 1"
	}
	return errMsgStock(e.Stock)
}
