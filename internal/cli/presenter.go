// Package cli is the interactive terminal surface: a line-oriented shell
// over the flow controllers and a Presenter that renders wizard views as
// plain text.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/skatezo/shopflow/internal/wizard"
)

// Presenter renders wizard views to a writer. Safe for concurrent use.
type Presenter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPresenter builds a presenter writing to out.
func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// ShowProduct renders the variant-selection step.
func (p *Presenter) ShowProduct(v wizard.ProductView) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s  %s\n", v.Product.Name, v.Price.StringFixed(2))

	disabled := make(map[string]bool, len(v.DisabledSizeIDs))
	for _, id := range v.DisabledSizeIDs {
		disabled[id] = true
	}

	b.WriteString("  colors:")
	for _, c := range v.Colors {
		mark := " "
		if c.ID == v.SelectedColorID {
			mark = "*"
		}
		fmt.Fprintf(&b, " [%s%s]", mark, c.Name)
	}
	b.WriteString("\n  sizes: ")
	for _, s := range v.Sizes {
		switch {
		case disabled[s.ID]:
			fmt.Fprintf(&b, " (%s: out of stock)", s.Name)
		case s.ID == v.SelectedSizeID:
			fmt.Fprintf(&b, " [*%s]", s.Name)
		default:
			fmt.Fprintf(&b, " [ %s]", s.Name)
		}
	}
	fmt.Fprintf(&b, "\n  quantity: %d\n", v.Quantity)
	if v.Variant != nil && v.Variant.LowStock {
		fmt.Fprintf(&b, "  only %d left\n", v.Variant.Stock)
	}
	if v.CanProceed {
		b.WriteString("  ready: proceed to address\n")
	}
	p.printf("%s", b.String())
}

// ShowPricing renders the server-computed price breakdown.
func (p *Presenter) ShowPricing(v wizard.PricingView) {
	var b strings.Builder
	q := v.Quote
	fmt.Fprintf(&b, "\n  subtotal:  %s\n", q.Subtotal.StringFixed(2))
	if q.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "  discount: -%s", q.DiscountAmount.StringFixed(2))
		if v.Discount != nil {
			fmt.Fprintf(&b, " (%s)", v.Discount.Code)
		}
		b.WriteString("\n")
	}
	if q.FreeShipping() {
		b.WriteString("  shipping:  free\n")
	} else {
		fmt.Fprintf(&b, "  shipping:  %s\n", q.ShippingCost.StringFixed(2))
	}
	if q.TaxAmount.IsPositive() {
		fmt.Fprintf(&b, "  tax:       %s\n", q.TaxAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "  total:     %s\n", q.TotalAmount.StringFixed(2))
	p.printf("%s", b.String())
}

// ShowAddresses renders the address-selection step.
func (p *Presenter) ShowAddresses(v wizard.AddressView) {
	var b strings.Builder
	b.WriteString("\n  addresses:\n")
	if len(v.Addresses) == 0 {
		b.WriteString("    none saved, add one with: address add\n")
	}
	for _, a := range v.Addresses {
		mark := " "
		if a.ID == v.SelectedID {
			mark = "*"
		}
		fmt.Fprintf(&b, "   %s %s  %s  %s", mark, a.ID, a.FullName, a.FullAddress)
		if a.IsDefault {
			b.WriteString("  (default)")
		}
		b.WriteString("\n")
	}
	if v.CanConfirm {
		b.WriteString("  ready: confirm\n")
	}
	p.printf("%s", b.String())
}

// ShowCouponStatus renders inline coupon feedback.
func (p *Presenter) ShowCouponStatus(applied bool, message string) {
	if applied {
		p.printf("  coupon: %s\n", message)
		return
	}
	p.printf("  coupon rejected: %s\n", message)
}

// ShowLoading announces a blocking fetch.
func (p *Presenter) ShowLoading(message string) {
	p.printf("... %s\n", message)
}

// HideLoading is a no-op on a line-oriented surface.
func (p *Presenter) HideLoading() {}

// ShowError renders a transient error.
func (p *Presenter) ShowError(message string) {
	p.printf("error: %s\n", message)
}
