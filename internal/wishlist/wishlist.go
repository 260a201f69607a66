// Package wishlist drives the wishlist toggle control.
package wishlist

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/skatezo/shopflow/internal/api"
)

// Backend is the slice of the storefront API the toggler needs.
type Backend interface {
	ToggleWishlist(ctx context.Context, productID, variantID string) (*api.WishlistResult, error)
}

// Toggler flips products on and off the wishlist. Repeated toggles of the
// same product while a request is in flight share that request instead of
// racing the server, so a double press cannot add-then-remove.
type Toggler struct {
	backend Backend
	group   singleflight.Group
}

// New builds a toggler over the given backend.
func New(backend Backend) *Toggler {
	return &Toggler{backend: backend}
}

// Toggle flips the product's wishlist membership and reports the outcome:
// the new pressed state of the control, the wishlist count for the header
// badge and the product summary for the confirmation popup.
func (t *Toggler) Toggle(ctx context.Context, productID, variantID string) (*api.WishlistResult, error) {
	key := productID + ":" + variantID
	v, err, _ := t.group.Do(key, func() (any, error) {
		return t.backend.ToggleWishlist(ctx, productID, variantID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.WishlistResult), nil
}
