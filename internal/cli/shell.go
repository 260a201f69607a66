package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/internal/addressbook"
	"github.com/skatezo/shopflow/internal/api"
	"github.com/skatezo/shopflow/internal/cartpicker"
	"github.com/skatezo/shopflow/internal/domain/address"
	"github.com/skatezo/shopflow/internal/payment"
	"github.com/skatezo/shopflow/internal/scheduler"
	"github.com/skatezo/shopflow/internal/wishlist"
	"github.com/skatezo/shopflow/internal/wizard"
)

// Components are the flow controllers the shell drives.
type Components struct {
	Wizard    *wizard.Wizard
	Wishlist  *wishlist.Toggler
	Cart      *cartpicker.Picker
	Scheduler *scheduler.Scheduler
	Addresses *addressbook.Manager
	Payment   *payment.Handoff
}

// Shell is the interactive command loop.
type Shell struct {
	c   Components
	in  io.Reader
	out io.Writer
}

// New builds a shell over the given components.
func New(c Components, in io.Reader, out io.Writer) *Shell {
	return &Shell{c: c, in: in, out: out}
}

const usage = `commands:
  open <product>            start a purchase
  color <id> | size <id>    pick variant options
  qty <n>                   set quantity
  proceed | back            move between steps
  address <id>              pick a delivery address
  newaddress n|ph|l1|pin    save a delivery address
  coupon <code>             apply a coupon
  confirm                   hand off to order review
  close                     abandon the purchase
  wish <product> [variant]  toggle wishlist
  cart add <product>        push a product at the cart
  cart color|size|qty|confirm|cancel
  addr list|delete|default  manage saved addresses
  pincode <code>            look a pincode up
  schedule list|create|pause|resume|cancel
  pay <payment> <order> <signature>
  exit
`

// Run reads commands until EOF, exit, or context cancellation.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	fmt.Fprint(s.out, "shopflow shell, type 'help' for commands\n")
	for {
		fmt.Fprint(s.out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "exit" || fields[0] == "quit" {
				return nil
			}
			if err := s.dispatch(ctx, fields); err != nil {
				fmt.Fprintf(s.out, "error: %s\n", err)
			}
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprint(s.out, usage)
		return nil
	case "open":
		if len(rest) != 1 {
			return errors.New("usage: open <product>")
		}
		return s.c.Wizard.Open(ctx, rest[0])
	case "color":
		if len(rest) != 1 {
			return errors.New("usage: color <id>")
		}
		return s.c.Wizard.SelectColor(rest[0])
	case "size":
		if len(rest) != 1 {
			return errors.New("usage: size <id>")
		}
		return s.c.Wizard.SelectSize(ctx, rest[0])
	case "qty":
		n, err := parseCount(rest)
		if err != nil {
			return err
		}
		return s.c.Wizard.SetQuantity(ctx, n)
	case "proceed":
		return s.c.Wizard.ProceedToAddress(ctx)
	case "back":
		return s.c.Wizard.Back()
	case "address":
		if len(rest) != 1 {
			return errors.New("usage: address <id>")
		}
		return s.c.Wizard.SelectAddress(rest[0])
	case "newaddress":
		form, err := parseAddressForm(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		return s.c.Wizard.SaveAddress(ctx, form)
	case "coupon":
		if len(rest) != 1 {
			return errors.New("usage: coupon <code>")
		}
		return s.c.Wizard.ApplyCoupon(ctx, rest[0])
	case "confirm":
		u, err := s.c.Wizard.Confirm()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "review: %s\n", u)
		return nil
	case "close":
		s.c.Wizard.Close()
		return nil
	case "wish":
		return s.wish(ctx, rest)
	case "cart":
		return s.cart(ctx, rest)
	case "addr":
		return s.addr(ctx, rest)
	case "pincode":
		if len(rest) != 1 {
			return errors.New("usage: pincode <code>")
		}
		var form address.Form
		if err := s.c.Addresses.AutofillPincode(ctx, &form, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s, %s\n", form.City, form.State)
		return nil
	case "schedule":
		return s.schedule(ctx, rest)
	case "pay":
		if len(rest) != 3 {
			return errors.New("usage: pay <payment> <order> <signature>")
		}
		out, err := s.c.Payment.Complete(ctx, api.PaymentCallback{
			PaymentID: rest[0],
			OrderID:   rest[1],
			Signature: rest[2],
		})
		if err != nil {
			return err
		}
		if out.Reload {
			fmt.Fprint(s.out, "payment verified, refresh the page\n")
		} else {
			fmt.Fprintf(s.out, "payment verified, continue at %s\n", out.RedirectURL)
		}
		return nil
	default:
		return errors.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (s *Shell) wish(ctx context.Context, rest []string) error {
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New("usage: wish <product> [variant]")
	}
	variantID := ""
	if len(rest) == 2 {
		variantID = rest[1]
	}
	res, err := s.c.Wishlist.Toggle(ctx, rest[0], variantID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %s (%d items on wishlist)\n", res.Action, res.Message, res.Count)
	return nil
}

func (s *Shell) cart(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("usage: cart add|color|size|qty|confirm|cancel")
	}
	sub, rest := rest[0], rest[1:]
	switch sub {
	case "add":
		if len(rest) != 1 {
			return errors.New("usage: cart add <product>")
		}
		out, err := s.c.Cart.Add(ctx, rest[0])
		if err != nil {
			return err
		}
		if out.Added {
			fmt.Fprintf(s.out, "%s (%d items in cart)\n", out.Message, out.Cart.ItemsCount)
			return nil
		}
		return s.printCartOptions()
	case "color":
		if len(rest) != 1 {
			return errors.New("usage: cart color <id>")
		}
		if _, err := s.c.Cart.SelectColor(rest[0]); err != nil {
			return err
		}
		return s.printCartOptions()
	case "size":
		if len(rest) != 1 {
			return errors.New("usage: cart size <id>")
		}
		if _, err := s.c.Cart.SelectSize(rest[0]); err != nil {
			return err
		}
		return s.printCartOptions()
	case "qty":
		n, err := parseCount(rest)
		if err != nil {
			return err
		}
		if err := s.c.Cart.SetQuantity(n); err != nil {
			return err
		}
		return s.printCartOptions()
	case "confirm":
		out, err := s.c.Cart.Confirm(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s (%d items in cart)\n", out.Message, out.Cart.ItemsCount)
		return nil
	case "cancel":
		s.c.Cart.Cancel()
		return nil
	default:
		return errors.Errorf("unknown cart command %q", sub)
	}
}

func (s *Shell) printCartOptions() error {
	opts, err := s.c.Cart.Options()
	if err != nil {
		return err
	}
	disabled := make(map[string]bool, len(opts.DisabledSizeIDs))
	for _, id := range opts.DisabledSizeIDs {
		disabled[id] = true
	}
	fmt.Fprintf(s.out, "%s\n  colors:", opts.Product.Name)
	for _, c := range opts.Colors {
		mark := " "
		if c.ID == opts.SelectedColorID {
			mark = "*"
		}
		fmt.Fprintf(s.out, " [%s%s]", mark, c.Name)
	}
	fmt.Fprint(s.out, "\n  sizes: ")
	for _, sz := range opts.Sizes {
		switch {
		case disabled[sz.ID]:
			fmt.Fprintf(s.out, " (%s: out of stock)", sz.Name)
		case sz.ID == opts.SelectedSizeID:
			fmt.Fprintf(s.out, " [*%s]", sz.Name)
		default:
			fmt.Fprintf(s.out, " [ %s]", sz.Name)
		}
	}
	fmt.Fprintf(s.out, "\n  quantity: %d\n", opts.Quantity)
	if opts.Variant != nil {
		fmt.Fprint(s.out, "  ready: cart confirm\n")
	}
	return nil
}

func (s *Shell) addr(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("usage: addr list|delete|default")
	}
	sub, rest := rest[0], rest[1:]
	switch sub {
	case "list":
		addrs, err := s.c.Addresses.List(ctx)
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			fmt.Fprint(s.out, "no saved addresses\n")
			return nil
		}
		for _, a := range addrs {
			fmt.Fprintf(s.out, "%s  %s  %s", a.ID, a.FullName, a.FullAddress)
			if a.IsDefault {
				fmt.Fprint(s.out, "  (default)")
			}
			fmt.Fprint(s.out, "\n")
		}
		return nil
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: addr delete <id>")
		}
		msg, err := s.c.Addresses.Delete(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, msg)
		return nil
	case "default":
		if len(rest) != 1 {
			return errors.New("usage: addr default <id>")
		}
		msg, err := s.c.Addresses.SetDefault(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, msg)
		return nil
	default:
		return errors.Errorf("unknown addr command %q", sub)
	}
}

func (s *Shell) schedule(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("usage: schedule list|create|pause|resume|cancel")
	}
	sub, rest := rest[0], rest[1:]
	switch sub {
	case "list":
		purchases, err := s.c.Scheduler.List(ctx)
		if err != nil {
			return err
		}
		if len(purchases) == 0 {
			fmt.Fprint(s.out, "no scheduled purchases\n")
			return nil
		}
		for _, p := range purchases {
			fmt.Fprintf(s.out, "%s  %s  x%d on %s (%s, %s)\n",
				p.ID, p.Title, p.Quantity, p.ScheduledDate, p.Frequency, p.Status)
		}
		return nil
	case "create":
		if len(rest) != 3 {
			return errors.New("usage: schedule create <product> <yyyy-mm-dd> <qty>")
		}
		qty, err := strconv.Atoi(rest[2])
		if err != nil {
			return errors.Wrap(err, "parse quantity")
		}
		msg, err := s.c.Scheduler.Schedule(ctx, &api.FuturePurchaseRequest{
			ProductID:     rest[0],
			ScheduledDate: rest[1],
			Quantity:      qty,
			Frequency:     "once",
			ActionType:    "add_to_cart",
			Priority:      "medium",
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, msg)
		return nil
	case "pause", "resume", "cancel":
		if len(rest) != 1 {
			return errors.Errorf("usage: schedule %s <id>", sub)
		}
		var (
			msg string
			err error
		)
		switch sub {
		case "pause":
			msg, err = s.c.Scheduler.Pause(ctx, rest[0])
		case "resume":
			msg, err = s.c.Scheduler.Resume(ctx, rest[0])
		default:
			msg, err = s.c.Scheduler.Cancel(ctx, rest[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, msg)
		return nil
	default:
		return errors.Errorf("unknown schedule command %q", sub)
	}
}

func parseCount(rest []string) (int, error) {
	if len(rest) != 1 {
		return 0, errors.New("usage: qty <n>")
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, errors.Wrap(err, "parse quantity")
	}
	return n, nil
}

// parseAddressForm parses "name|phone|line1|pincode" with optional
// "|line2|city|state" fields.
func parseAddressForm(s string) (*address.Form, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 4 {
		return nil, errors.New("usage: newaddress <name>|<phone>|<line1>|<pincode>")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	form := &address.Form{
		FullName:     parts[0],
		PhoneNumber:  parts[1],
		AddressLine1: parts[2],
		Pincode:      parts[3],
	}
	if len(parts) > 4 {
		form.AddressLine2 = parts[4]
	}
	if len(parts) > 5 {
		form.City = parts[5]
	}
	if len(parts) > 6 {
		form.State = parts[6]
	}
	return form, nil
}
