// Package scheduler drives the future-purchase flow: pick a product and
// variant, choose a date and cadence, and let the server take it from
// there.
package scheduler

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/internal/api"
)

// Backend is the slice of the storefront API the scheduler needs.
type Backend interface {
	GetScheduleProduct(ctx context.Context, productID string) (*api.ScheduleProduct, error)
	CreateFuturePurchase(ctx context.Context, req *api.FuturePurchaseRequest) (string, error)
	ListFuturePurchases(ctx context.Context) ([]api.FuturePurchase, error)
	UpdateFuturePurchaseStatus(ctx context.Context, purchaseID, action string) (string, error)
}

// DateLayout is the wire format of scheduled dates.
const DateLayout = "2006-01-02"

// Validation errors with their user-facing text. Only the date and the
// quantity are judged client-side; frequency, priority and the price
// limits are the server's to validate.
var (
	ErrDateRequired = errors.New("Please select a scheduled date")
	ErrDateInvalid  = errors.New("Please enter a valid date")
	ErrDateInPast   = errors.New("Scheduled date cannot be in the past")
	ErrQuantity     = errors.New("Quantity must be at least 1")
)

// Scheduler creates and manages future purchases.
type Scheduler struct {
	backend Backend
	now     func() time.Time
}

// New builds a scheduler over the given backend.
func New(backend Backend) *Scheduler {
	return &Scheduler{backend: backend, now: time.Now}
}

// Load fetches the product and its variants for the scheduling form.
func (s *Scheduler) Load(ctx context.Context, productID string) (*api.ScheduleProduct, error) {
	return s.backend.GetScheduleProduct(ctx, productID)
}

// Schedule validates the request and submits it. Validation failures never
// reach the network.
func (s *Scheduler) Schedule(ctx context.Context, req *api.FuturePurchaseRequest) (string, error) {
	if err := s.validate(req); err != nil {
		return "", err
	}
	msg, err := s.backend.CreateFuturePurchase(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "create future purchase")
	}
	return msg, nil
}

func (s *Scheduler) validate(req *api.FuturePurchaseRequest) error {
	if req.Quantity < 1 {
		return ErrQuantity
	}
	if req.ScheduledDate == "" {
		return ErrDateRequired
	}
	date, err := time.Parse(DateLayout, req.ScheduledDate)
	if err != nil {
		return ErrDateInvalid
	}
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return ErrDateInPast
	}
	return nil
}

// List fetches the shopper's scheduled purchases.
func (s *Scheduler) List(ctx context.Context) ([]api.FuturePurchase, error) {
	return s.backend.ListFuturePurchases(ctx)
}

// Pause suspends a scheduled purchase.
func (s *Scheduler) Pause(ctx context.Context, purchaseID string) (string, error) {
	return s.backend.UpdateFuturePurchaseStatus(ctx, purchaseID, "pause")
}

// Resume reactivates a paused purchase.
func (s *Scheduler) Resume(ctx context.Context, purchaseID string) (string, error) {
	return s.backend.UpdateFuturePurchaseStatus(ctx, purchaseID, "resume")
}

// Cancel cancels a scheduled purchase.
func (s *Scheduler) Cancel(ctx context.Context, purchaseID string) (string, error) {
	return s.backend.UpdateFuturePurchaseStatus(ctx, purchaseID, "cancel")
}
