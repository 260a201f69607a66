package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skatezo/shopflow/internal/api"
	"github.com/skatezo/shopflow/internal/domain/address"
	"github.com/skatezo/shopflow/internal/domain/catalog"
	"github.com/skatezo/shopflow/internal/domain/pricing"
)

type fakeBackend struct {
	mu             sync.Mutex
	details        *api.ProductDetails
	detailsErr     error
	detailsCalls   int
	priceCalls     []priceCall
	priceErr       error
	priceFn        func(priceCall) (*api.PriceResult, error)
	addresses      []address.Address
	addressErr     error
	addressCalls   int
	savedForms     []*address.Form
	saveErr        error
	blockDetails   chan struct{}
	blockAddresses chan struct{}
}

type priceCall struct {
	VariantID string
	Quantity  int
	Coupon    string
}

func (f *fakeBackend) GetProductDetails(ctx context.Context, productID string) (*api.ProductDetails, error) {
	if f.blockDetails != nil {
		<-f.blockDetails
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailsCalls++
	return f.details, f.detailsErr
}

func (f *fakeBackend) CalculateTotal(ctx context.Context, variantID string, quantity int, couponCode string) (*api.PriceResult, error) {
	f.mu.Lock()
	call := priceCall{VariantID: variantID, Quantity: quantity, Coupon: couponCode}
	f.priceCalls = append(f.priceCalls, call)
	f.mu.Unlock()
	if f.priceFn != nil {
		return f.priceFn(call)
	}
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return &api.PriceResult{
		Quote: pricing.Quote{
			Subtotal:    decimal.NewFromInt(499).Mul(decimal.NewFromInt(int64(quantity))),
			TotalAmount: decimal.NewFromInt(499).Mul(decimal.NewFromInt(int64(quantity))),
			Quantity:    quantity,
		},
	}, nil
}

func (f *fakeBackend) ListAddresses(ctx context.Context) ([]address.Address, error) {
	if f.blockAddresses != nil {
		<-f.blockAddresses
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addressCalls++
	return f.addresses, f.addressErr
}

func (f *fakeBackend) SaveOrderAddress(ctx context.Context, form *address.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedForms = append(f.savedForms, form)
	return f.saveErr
}

func (f *fakeBackend) priceCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.priceCalls)
}

func (f *fakeBackend) lastPriceCall() priceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priceCalls[len(f.priceCalls)-1]
}

// recorder captures every presenter call in order.
type recorder struct {
	mu       sync.Mutex
	products []ProductView
	pricings []PricingView
	addrs    []AddressView
	coupons  []couponStatus
	errors   []string
	loading  []string
	hidden   int
}

type couponStatus struct {
	Applied bool
	Message string
}

func (r *recorder) ShowProduct(v ProductView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, v)
}

func (r *recorder) ShowPricing(v PricingView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pricings = append(r.pricings, v)
}

func (r *recorder) ShowAddresses(v AddressView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addrs = append(r.addrs, v)
}

func (r *recorder) ShowCouponStatus(applied bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons = append(r.coupons, couponStatus{Applied: applied, Message: message})
}

func (r *recorder) ShowLoading(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = append(r.loading, message)
}

func (r *recorder) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hidden++
}

func (r *recorder) ShowError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) lastProduct(t *testing.T) ProductView {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.products)
	return r.products[len(r.products)-1]
}

func (r *recorder) lastPricing(t *testing.T) PricingView {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.pricings)
	return r.pricings[len(r.pricings)-1]
}

func (r *recorder) lastAddresses(t *testing.T) AddressView {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.addrs)
	return r.addrs[len(r.addrs)-1]
}

// twoColorDetails builds the canonical test product: Red/Blue colors,
// S/M sizes, where Red+S is out of stock and Red+M has 5 in stock at 499.
func twoColorDetails() *api.ProductDetails {
	return &api.ProductDetails{
		Product: catalog.Product{
			ID:          "10",
			Name:        "Canvas Sneaker",
			BasePrice:   decimal.NewFromInt(599),
			TotalStock:  5,
			HasVariants: true,
			InStock:     true,
		},
		Colors: []catalog.Color{
			{ID: "1", Name: "Red"},
			{ID: "2", Name: "Blue"},
		},
		Sizes: []catalog.Size{
			{ID: "7", Name: "S"},
			{ID: "8", Name: "M"},
		},
		Variants: catalog.VariantMap{
			catalog.Key("1", "7"): {ID: "101", ColorID: "1", SizeID: "7", Price: decimal.NewFromInt(499), Stock: 0, InStock: false},
			catalog.Key("1", "8"): {ID: "102", ColorID: "1", SizeID: "8", Price: decimal.NewFromInt(499), Stock: 5, InStock: true},
			catalog.Key("2", "8"): {ID: "103", ColorID: "2", SizeID: "8", Price: decimal.NewFromInt(549), Stock: 2, InStock: true},
		},
	}
}

func openWizard(t *testing.T, backend *fakeBackend) (*Wizard, *recorder) {
	t.Helper()
	rec := &recorder{}
	w := New(backend, rec)
	require.NoError(t, w.Open(context.Background(), "10"))
	return w, rec
}

func TestOpen(t *testing.T) {
	t.Run("loads product", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		assert.Equal(t, StateVariantSelection, w.State())
		assert.Equal(t, 1, w.Quantity())
		assert.Equal(t, 1, backend.detailsCalls)
		assert.Equal(t, []string{"Loading product details..."}, rec.loading)
		assert.Equal(t, 1, rec.hidden)

		view := rec.lastProduct(t)
		assert.Equal(t, "Canvas Sneaker", view.Product.Name)
		assert.Nil(t, view.Variant)
		assert.False(t, view.CanProceed)
		assert.True(t, view.Price.Equal(decimal.NewFromInt(599)))
	})

	t.Run("rejects second open", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, _ := openWizard(t, backend)

		err := w.Open(context.Background(), "11")
		require.ErrorIs(t, err, ErrAlreadyOpen)
		assert.Equal(t, 1, backend.detailsCalls)
		assert.Equal(t, StateVariantSelection, w.State())
	})

	t.Run("fetch failure closes", func(t *testing.T) {
		backend := &fakeBackend{detailsErr: &api.StatusError{StatusCode: 502}}
		rec := &recorder{}
		w := New(backend, rec)

		err := w.Open(context.Background(), "10")
		require.Error(t, err)
		assert.Equal(t, StateClosed, w.State())
		assert.Equal(t, []string{"Network error occurred"}, rec.errors)

		// Closed again, so a retry is allowed.
		backend.detailsErr = nil
		backend.details = twoColorDetails()
		require.NoError(t, w.Open(context.Background(), "10"))
	})

	t.Run("single color preselected", func(t *testing.T) {
		details := &api.ProductDetails{
			Product: catalog.Product{ID: "30", Name: "Linen Shirt", BasePrice: decimal.NewFromInt(599), InStock: true},
			Colors:  []catalog.Color{{ID: "1", Name: "Red"}},
			Sizes: []catalog.Size{
				{ID: "7", Name: "S"},
				{ID: "8", Name: "M"},
			},
			Variants: catalog.VariantMap{
				catalog.Key("1", "7"): {ID: "101", Stock: 0, InStock: false},
				catalog.Key("1", "8"): {ID: "102", Price: decimal.NewFromInt(499), Stock: 5, InStock: true},
			},
		}
		backend := &fakeBackend{details: details}
		rec := &recorder{}
		w := New(backend, rec)
		require.NoError(t, w.Open(context.Background(), "30"))

		view := rec.lastProduct(t)
		assert.Equal(t, "1", view.SelectedColorID)
		assert.Equal(t, []string{"7"}, view.DisabledSizeIDs)
		assert.Nil(t, view.Variant)
		assert.Zero(t, backend.priceCallCount())

		require.NoError(t, w.SelectSize(context.Background(), "8"))
		view = rec.lastProduct(t)
		require.NotNil(t, view.Variant)
		assert.Equal(t, 5, view.Variant.Stock)
		require.Equal(t, 1, backend.priceCallCount())
		assert.Equal(t, priceCall{VariantID: "102", Quantity: 1}, backend.lastPriceCall())
	})

	t.Run("auto selects single options", func(t *testing.T) {
		details := &api.ProductDetails{
			Product: catalog.Product{ID: "20", Name: "Plain Tee", BasePrice: decimal.NewFromInt(299), InStock: true},
			Colors:  []catalog.Color{{ID: "3", Name: "Black"}},
			Sizes:   []catalog.Size{{ID: "9", Name: "L"}},
			Variants: catalog.VariantMap{
				catalog.Key("3", "9"): {ID: "301", ColorID: "3", SizeID: "9", Price: decimal.NewFromInt(299), Stock: 10, InStock: true},
			},
		}
		backend := &fakeBackend{details: details}
		rec := &recorder{}
		w := New(backend, rec)
		require.NoError(t, w.Open(context.Background(), "20"))

		view := rec.lastProduct(t)
		require.NotNil(t, view.Variant)
		assert.Equal(t, "301", view.Variant.ID)
		assert.True(t, view.CanProceed)
		require.Equal(t, 1, backend.priceCallCount())
		assert.Equal(t, priceCall{VariantID: "301", Quantity: 1}, backend.lastPriceCall())
	})
}

func TestVariantSelection(t *testing.T) {
	t.Run("color marks unavailable sizes", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		require.NoError(t, w.SelectColor("1"))
		view := rec.lastProduct(t)
		assert.Equal(t, "1", view.SelectedColorID)
		assert.Equal(t, []string{"7"}, view.DisabledSizeIDs)
		assert.Zero(t, backend.priceCallCount())
	})

	t.Run("out of stock size stays unresolved", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "7"))

		view := rec.lastProduct(t)
		assert.Nil(t, view.Variant)
		assert.False(t, view.CanProceed)
		assert.Zero(t, backend.priceCallCount())

		err := w.ProceedToAddress(context.Background())
		require.ErrorIs(t, err, ErrNoVariant)
	})

	t.Run("resolved size fetches price", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))

		view := rec.lastProduct(t)
		require.NotNil(t, view.Variant)
		assert.Equal(t, "102", view.Variant.ID)
		assert.True(t, view.Price.Equal(decimal.NewFromInt(499)))
		assert.True(t, view.CanProceed)

		require.Equal(t, 1, backend.priceCallCount())
		assert.Equal(t, priceCall{VariantID: "102", Quantity: 1}, backend.lastPriceCall())
		quote := rec.lastPricing(t).Quote
		assert.True(t, quote.TotalAmount.Equal(decimal.NewFromInt(499)))
	})

	t.Run("size before color rejected", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		err := w.SelectSize(context.Background(), "8")
		require.ErrorIs(t, err, ErrNoColor)
		assert.Contains(t, rec.errors, "Please select a color first")
	})

	t.Run("color change clears size", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.SelectColor("2"))

		view := rec.lastProduct(t)
		assert.Empty(t, view.SelectedSizeID)
		assert.Nil(t, view.Variant)
		assert.False(t, view.CanProceed)
	})

	t.Run("unknown color rejected", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, _ := openWizard(t, backend)
		require.ErrorIs(t, w.SelectColor("99"), ErrUnknownOption)
	})
}

func TestQuantity(t *testing.T) {
	selectRedM := func(t *testing.T) (*Wizard, *recorder, *fakeBackend) {
		t.Helper()
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		return w, rec, backend
	}

	t.Run("change refetches price", func(t *testing.T) {
		w, rec, backend := selectRedM(t)
		require.NoError(t, w.ChangeQuantity(context.Background(), 2))

		assert.Equal(t, 3, w.Quantity())
		assert.Equal(t, priceCall{VariantID: "102", Quantity: 3}, backend.lastPriceCall())
		quote := rec.lastPricing(t).Quote
		assert.True(t, quote.TotalAmount.Equal(decimal.NewFromInt(1497)))
	})

	t.Run("below one rejected without network", func(t *testing.T) {
		w, rec, backend := selectRedM(t)
		before := backend.priceCallCount()

		err := w.ChangeQuantity(context.Background(), -1)
		var qerr *QuantityError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, 0, qerr.Requested)
		assert.Contains(t, rec.errors, "Quantity cannot be less than 1")
		assert.Equal(t, 1, w.Quantity())
		assert.Equal(t, before, backend.priceCallCount())
	})

	t.Run("above stock rejected without network", func(t *testing.T) {
		w, rec, backend := selectRedM(t)
		require.NoError(t, w.SetQuantity(context.Background(), 5))
		before := backend.priceCallCount()

		err := w.ChangeQuantity(context.Background(), 1)
		var qerr *QuantityError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, 5, qerr.Stock)
		assert.Contains(t, rec.errors, "Only 5 items available")
		assert.Equal(t, 5, w.Quantity())
		assert.Equal(t, before, backend.priceCallCount())
	})

	t.Run("without variant rejected", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)

		err := w.ChangeQuantity(context.Background(), 1)
		require.ErrorIs(t, err, ErrNoVariant)
		assert.Contains(t, rec.errors, "Please select color and size first")
	})

	t.Run("clamped on low stock variant", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, _ := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.SetQuantity(context.Background(), 5))

		// Blue+M has only 2 in stock; the quantity follows the new cap.
		require.NoError(t, w.SelectColor("2"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		assert.Equal(t, 2, w.Quantity())
	})

	t.Run("price failure keeps last quote", func(t *testing.T) {
		w, rec, backend := selectRedM(t)
		last := rec.lastPricing(t)

		backend.priceErr = &api.StatusError{StatusCode: 500}
		require.NoError(t, w.SetQuantity(context.Background(), 2))

		assert.Equal(t, 2, w.Quantity())
		assert.Equal(t, last.Quote.TotalAmount, rec.lastPricing(t).Quote.TotalAmount)
		assert.Empty(t, rec.errors)
	})
}

func TestAddressStep(t *testing.T) {
	addrs := []address.Address{
		{ID: "a1", FullName: "First"},
		{ID: "a2", FullName: "Second", IsDefault: true},
	}

	toAddressStep := func(t *testing.T, backend *fakeBackend) (*Wizard, *recorder) {
		t.Helper()
		w, rec := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.ProceedToAddress(context.Background()))
		return w, rec
	}

	t.Run("default preselected", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)

		assert.Equal(t, StateAddressSelection, w.State())
		view := rec.lastAddresses(t)
		assert.Equal(t, "a2", view.SelectedID)
		assert.True(t, view.CanConfirm)
	})

	t.Run("fetch failure falls back", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addressErr: &api.StatusError{StatusCode: 500}}
		w, rec := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))

		err := w.ProceedToAddress(context.Background())
		require.Error(t, err)
		assert.Equal(t, StateVariantSelection, w.State())
		assert.Contains(t, rec.errors, "Network error occurred")
		// Selection intact, proceed can be retried.
		backend.addressErr = nil
		backend.addresses = addrs
		require.NoError(t, w.ProceedToAddress(context.Background()))
	})

	t.Run("select address", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)

		require.NoError(t, w.SelectAddress("a1"))
		assert.Equal(t, "a1", rec.lastAddresses(t).SelectedID)

		require.ErrorIs(t, w.SelectAddress("missing"), ErrUnknownOption)
	})

	t.Run("no addresses disables confirm", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := toAddressStep(t, backend)

		view := rec.lastAddresses(t)
		assert.Empty(t, view.SelectedID)
		assert.False(t, view.CanConfirm)
		assert.False(t, w.CanConfirm())
	})

	t.Run("save address reloads list", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)

		form := &address.Form{
			FullName:     "New Person",
			PhoneNumber:  "9876543210",
			AddressLine1: "12 Lane",
			Pincode:      "560001",
		}
		backend.addresses = append(addrs, address.Address{ID: "a3", FullName: "New Person"})
		require.NoError(t, w.SaveAddress(context.Background(), form))

		require.Len(t, backend.savedForms, 1)
		assert.Equal(t, 2, backend.addressCalls)
		assert.Len(t, rec.lastAddresses(t).Addresses, 3)
		// The previously selected default survives the reload.
		assert.Equal(t, "a2", rec.lastAddresses(t).SelectedID)
	})

	t.Run("invalid form never reaches network", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)

		err := w.SaveAddress(context.Background(), &address.Form{
			FullName:     "New Person",
			PhoneNumber:  "12345",
			AddressLine1: "12 Lane",
			Pincode:      "560001",
		})
		var ve *address.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Empty(t, backend.savedForms)
		assert.Contains(t, rec.errors, "Please enter a valid 10-digit phone number")
	})

	t.Run("back keeps selections", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)

		require.NoError(t, w.Back())
		assert.Equal(t, StateVariantSelection, w.State())
		view := rec.lastProduct(t)
		assert.Equal(t, "102", view.Variant.ID)

		require.NoError(t, w.ProceedToAddress(context.Background()))
		assert.Equal(t, "a2", rec.lastAddresses(t).SelectedID)
	})
}

func TestApplyCoupon(t *testing.T) {
	addrs := []address.Address{{ID: "a1", IsDefault: true}}

	toAddressStep := func(t *testing.T, backend *fakeBackend) (*Wizard, *recorder) {
		t.Helper()
		w, rec := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.ProceedToAddress(context.Background()))
		return w, rec
	}

	t.Run("applied coupon updates quote", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		backend.priceFn = func(c priceCall) (*api.PriceResult, error) {
			res := &api.PriceResult{Quote: pricing.Quote{
				Subtotal:    decimal.NewFromInt(499),
				TotalAmount: decimal.NewFromInt(499),
				Quantity:    c.Quantity,
			}}
			if c.Coupon == "SAVE50" {
				res.Quote.DiscountAmount = decimal.NewFromInt(50)
				res.Quote.TotalAmount = decimal.NewFromInt(449)
				res.Discount = &pricing.Discount{Code: "SAVE50", Amount: decimal.NewFromInt(50)}
			}
			return res, nil
		}
		w, rec := toAddressStep(t, backend)

		require.NoError(t, w.ApplyCoupon(context.Background(), "  SAVE50  "))
		assert.Equal(t, pricing.Coupon{Code: "SAVE50", Applied: true}, w.Coupon())
		assert.Equal(t, couponStatus{Applied: true, Message: "Coupon applied successfully!"}, rec.coupons[len(rec.coupons)-1])
		view := rec.lastPricing(t)
		assert.True(t, view.Quote.TotalAmount.Equal(decimal.NewFromInt(449)))
		require.NotNil(t, view.Discount)
		assert.Equal(t, "SAVE50", view.Discount.Code)
	})

	t.Run("rejected coupon keeps quote", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)
		last := rec.lastPricing(t)

		backend.priceErr = &api.APIError{Message: "Invalid coupon code"}
		err := w.ApplyCoupon(context.Background(), "BADCODE")
		require.Error(t, err)

		assert.Equal(t, couponStatus{Applied: false, Message: "Invalid coupon code"}, rec.coupons[len(rec.coupons)-1])
		assert.False(t, w.Coupon().Applied)
		assert.Equal(t, last.Quote.TotalAmount, rec.lastPricing(t).Quote.TotalAmount)
		assert.Equal(t, StateAddressSelection, w.State())
	})

	t.Run("empty code rejected without network", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, rec := toAddressStep(t, backend)
		before := backend.priceCallCount()

		err := w.ApplyCoupon(context.Background(), "   ")
		require.ErrorIs(t, err, ErrEmptyCoupon)
		assert.Contains(t, rec.errors, "Please enter a coupon code")
		assert.Equal(t, before, backend.priceCallCount())
	})

	t.Run("coupon resubmitted after quantity change", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, _ := toAddressStep(t, backend)
		require.NoError(t, w.ApplyCoupon(context.Background(), "SAVE50"))

		require.NoError(t, w.Back())
		require.NoError(t, w.ChangeQuantity(context.Background(), 1))

		assert.Equal(t, priceCall{VariantID: "102", Quantity: 2, Coupon: "SAVE50"}, backend.lastPriceCall())
	})
}

func TestConfirm(t *testing.T) {
	addrs := []address.Address{{ID: "a1", IsDefault: true}}

	t.Run("builds review url", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, _ := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.SetQuantity(context.Background(), 2))
		require.NoError(t, w.ProceedToAddress(context.Background()))

		u, err := w.Confirm()
		require.NoError(t, err)
		assert.Equal(t, "/orders/review/?address_id=a1&quantity=2&variant_id=102", u)
		assert.Equal(t, StateRedirecting, w.State())
	})

	t.Run("carries applied coupon", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), addresses: addrs}
		w, _ := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.ProceedToAddress(context.Background()))
		require.NoError(t, w.ApplyCoupon(context.Background(), "SAVE50"))

		u, err := w.Confirm()
		require.NoError(t, err)
		assert.Equal(t, "/orders/review/?address_id=a1&coupon_code=SAVE50&quantity=1&variant_id=102", u)
	})

	t.Run("requires selected address", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, rec := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))
		require.NoError(t, w.ProceedToAddress(context.Background()))

		_, err := w.Confirm()
		require.ErrorIs(t, err, ErrIncomplete)
		assert.Contains(t, rec.errors, "Please complete all selections")
		assert.Equal(t, StateAddressSelection, w.State())
	})

	t.Run("invalid outside address step", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, _ := openWizard(t, backend)
		_, err := w.Confirm()
		require.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestClose(t *testing.T) {
	t.Run("resets for a new flow", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w, _ := openWizard(t, backend)
		require.NoError(t, w.SelectColor("1"))
		require.NoError(t, w.SelectSize(context.Background(), "8"))

		w.Close()
		assert.Equal(t, StateClosed, w.State())
		assert.False(t, w.Coupon().Applied)

		require.NoError(t, w.Open(context.Background(), "10"))
		assert.Equal(t, 1, w.Quantity())
	})

	t.Run("idempotent when closed", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails()}
		w := New(backend, &recorder{})
		w.Close()
		assert.Equal(t, StateClosed, w.State())
	})

	t.Run("late response discarded", func(t *testing.T) {
		backend := &fakeBackend{details: twoColorDetails(), blockDetails: make(chan struct{})}
		rec := &recorder{}
		w := New(backend, rec)

		done := make(chan error, 1)
		go func() {
			done <- w.Open(context.Background(), "10")
		}()
		// Let Open reach the blocked fetch, then tear down underneath it.
		require.Eventually(t, func() bool {
			return w.State() == StateProductLoading
		}, time.Second, time.Millisecond)
		w.Close()
		close(backend.blockDetails)

		require.NoError(t, <-done)
		assert.Equal(t, StateClosed, w.State())
		rec.mu.Lock()
		defer rec.mu.Unlock()
		assert.Empty(t, rec.products)
	})
}
