// Package cartpicker drives the reduced variant picker used when a product
// with variants is pushed at the cart from a listing page. Unlike the full
// purchase flow there is no pricing step and no address step: the shopper
// only resolves a variant and a quantity, then the line goes to the cart.
package cartpicker

import (
	"context"
	"sync"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/internal/api"
	"github.com/skatezo/shopflow/internal/domain/catalog"
)

// Backend is the slice of the storefront API the picker needs.
type Backend interface {
	FillProductIntoCart(ctx context.Context, productID string) (*api.FillProductResult, error)
	AddCartVariant(ctx context.Context, productID, variantID string, quantity int) (*api.AddCartResult, error)
}

// Sentinel errors for invalid picker gestures.
var (
	ErrNotOpen       = errors.New("no variant selection in progress")
	ErrAlreadyOpen   = errors.New("a variant selection is already in progress")
	ErrUnresolved    = errors.New("Please select color and size first")
	ErrUnknownOption = errors.New("unknown option")
)

// Outcome reports where an Add or Confirm landed. When Added is set the
// line is in the cart and Cart carries the new badge state; otherwise the
// picker is open and waiting for a variant selection.
type Outcome struct {
	Added   bool
	Message string
	Cart    api.CartSummary
}

// Options is the data the open picker renders.
type Options struct {
	Product         catalog.Product
	Colors          []catalog.Color
	Sizes           []catalog.Size
	SelectedColorID string
	SelectedSizeID  string
	DisabledSizeIDs []string
	Variant         *catalog.Variant
	Quantity        int
}

// Picker resolves a variant for a cart line. Products without variants pass
// straight through; products with variants open a selection that must be
// confirmed before anything reaches the cart.
type Picker struct {
	backend Backend

	mu        sync.Mutex
	productID string
	data      *api.FillProductResult
	colorID   string
	sizeID    string
	variant   *catalog.Variant
	quantity  int
}

// New builds a picker over the given backend.
func New(backend Backend) *Picker {
	return &Picker{backend: backend}
}

// Add pushes a product at the cart. A variant-free product is added
// directly and the returned outcome carries the cart summary. A product
// with variants opens the picker instead; resolve the variant via
// SelectColor and SelectSize, then Confirm.
func (p *Picker) Add(ctx context.Context, productID string) (*Outcome, error) {
	p.mu.Lock()
	if p.data != nil {
		p.mu.Unlock()
		return nil, ErrAlreadyOpen
	}
	p.mu.Unlock()

	res, err := p.backend.FillProductIntoCart(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "fill product")
	}
	if !res.RequiresVariantSelection {
		return &Outcome{Added: true, Message: res.Message, Cart: res.Cart}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.productID = productID
	p.data = res
	p.colorID, p.sizeID, p.variant = "", "", nil
	p.quantity = 1
	if len(res.Colors) == 1 {
		p.selectColorLocked(res.Colors[0].ID)
		if len(res.Sizes) == 1 {
			p.selectSizeLocked(res.Sizes[0].ID)
		}
	}
	return &Outcome{Added: false, Message: res.Message}, nil
}

// Open reports whether a variant selection is in progress.
func (p *Picker) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data != nil
}

// Options returns the current picker state for rendering.
func (p *Picker) Options() (Options, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return Options{}, ErrNotOpen
	}
	return p.optionsLocked(), nil
}

func (p *Picker) optionsLocked() Options {
	opts := Options{
		Product:         p.data.Product,
		Colors:          p.data.Colors,
		Sizes:           p.data.Sizes,
		SelectedColorID: p.colorID,
		SelectedSizeID:  p.sizeID,
		Variant:         p.variant,
		Quantity:        p.quantity,
	}
	if p.colorID != "" {
		opts.DisabledSizeIDs = p.data.Variants.DisabledSizes(p.colorID, p.data.Sizes)
	}
	return opts
}

// SelectColor picks a color, clearing any size selection.
func (p *Picker) SelectColor(colorID string) (Options, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return Options{}, ErrNotOpen
	}
	if err := p.selectColorLocked(colorID); err != nil {
		return Options{}, err
	}
	return p.optionsLocked(), nil
}

func (p *Picker) selectColorLocked(colorID string) error {
	found := false
	for _, c := range p.data.Colors {
		if c.ID == colorID {
			found = true
			break
		}
	}
	if !found {
		return errors.Wrap(ErrUnknownOption, "color "+colorID)
	}
	p.colorID = colorID
	p.sizeID = ""
	p.variant = nil
	return nil
}

// SelectSize picks a size for the chosen color. A pair without a
// purchasable variant leaves the selection unresolved.
func (p *Picker) SelectSize(sizeID string) (Options, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return Options{}, ErrNotOpen
	}
	if p.colorID == "" {
		return Options{}, ErrUnresolved
	}
	if err := p.selectSizeLocked(sizeID); err != nil {
		return Options{}, err
	}
	return p.optionsLocked(), nil
}

func (p *Picker) selectSizeLocked(sizeID string) error {
	found := false
	for _, s := range p.data.Sizes {
		if s.ID == sizeID {
			found = true
			break
		}
	}
	if !found {
		return errors.Wrap(ErrUnknownOption, "size "+sizeID)
	}
	p.sizeID = sizeID
	if v, ok := p.data.Variants.Resolve(p.colorID, sizeID); ok && v.InStock {
		p.variant = &v
		p.quantity = catalog.ClampQuantity(p.quantity, v.Stock)
	} else {
		p.variant = nil
	}
	return nil
}

// SetQuantity sets the line quantity within [1, stock].
func (p *Picker) SetQuantity(quantity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return ErrNotOpen
	}
	if p.variant == nil {
		return ErrUnresolved
	}
	if quantity < 1 || quantity > p.variant.Stock {
		return errors.Errorf("quantity %d out of range [1, %d]", quantity, p.variant.Stock)
	}
	p.quantity = quantity
	return nil
}

// Confirm sends the resolved line to the cart and closes the picker. The
// selection survives a failed request so the shopper can retry.
func (p *Picker) Confirm(ctx context.Context) (*Outcome, error) {
	p.mu.Lock()
	if p.data == nil {
		p.mu.Unlock()
		return nil, ErrNotOpen
	}
	if p.variant == nil {
		p.mu.Unlock()
		return nil, ErrUnresolved
	}
	productID := p.productID
	variantID := p.variant.ID
	quantity := p.quantity
	p.mu.Unlock()

	res, err := p.backend.AddCartVariant(ctx, productID, variantID, quantity)
	if err != nil {
		return nil, errors.Wrap(err, "add cart variant")
	}
	p.Cancel()
	return &Outcome{Added: true, Message: res.Message, Cart: res.Cart}, nil
}

// Cancel discards the selection and closes the picker.
func (p *Picker) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.productID = ""
	p.data = nil
	p.colorID, p.sizeID, p.variant = "", "", nil
	p.quantity = 0
}
