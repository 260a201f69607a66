// Package addressbook manages the shopper's saved delivery addresses
// outside the purchase flow: list, create, edit, delete and default
// selection, plus pincode lookup for form autofill.
package addressbook

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/skatezo/shopflow/internal/domain/address"
)

// Backend is the slice of the storefront API the manager needs.
type Backend interface {
	ListAddresses(ctx context.Context) ([]address.Address, error)
	SaveAddress(ctx context.Context, form *address.Form) (string, error)
	GetAddress(ctx context.Context, addressID string) (*address.Form, error)
	DeleteAddress(ctx context.Context, addressID string) (string, error)
	SetDefaultAddress(ctx context.Context, addressID string) (string, error)
	LookupPincode(ctx context.Context, pincode string) (*address.PincodeInfo, error)
}

// ErrNotServiceable reports a pincode outside the delivery area.
var ErrNotServiceable = errors.New("Delivery is not available for this pincode")

// Manager is the address book. Forms are validated client-side before any
// save reaches the network; the server remains the authority on ownership
// and default handling.
type Manager struct {
	backend Backend
}

// New builds a manager over the given backend.
func New(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// List fetches the shopper's saved addresses.
func (m *Manager) List(ctx context.Context) ([]address.Address, error) {
	return m.backend.ListAddresses(ctx)
}

// Get fetches a single address as an editable form.
func (m *Manager) Get(ctx context.Context, addressID string) (*address.Form, error) {
	return m.backend.GetAddress(ctx, addressID)
}

// Save validates the form and creates or updates the address; a form with
// an AddressID updates that address. Validation failures are returned as
// *address.ValidationError and never reach the network.
func (m *Manager) Save(ctx context.Context, form *address.Form) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	msg, err := m.backend.SaveAddress(ctx, form)
	if err != nil {
		return "", errors.Wrap(err, "save address")
	}
	return msg, nil
}

// Delete removes an address.
func (m *Manager) Delete(ctx context.Context, addressID string) (string, error) {
	return m.backend.DeleteAddress(ctx, addressID)
}

// SetDefault marks an address as the account default.
func (m *Manager) SetDefault(ctx context.Context, addressID string) (string, error) {
	return m.backend.SetDefaultAddress(ctx, addressID)
}

// AutofillPincode looks the pincode up and fills the form's city and state.
// A non-serviceable pincode returns ErrNotServiceable with the form
// untouched.
func (m *Manager) AutofillPincode(ctx context.Context, form *address.Form, pincode string) error {
	info, err := m.backend.LookupPincode(ctx, pincode)
	if err != nil {
		return errors.Wrap(err, "pincode lookup")
	}
	if !info.Serviceable {
		return ErrNotServiceable
	}
	form.Pincode = pincode
	form.City = info.City
	form.State = info.State
	return nil
}
