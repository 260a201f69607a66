package api

import (
	"context"
	"net/url"

	"github.com/skatezo/shopflow/internal/domain/address"
)

// addressPayload mirrors one entry of the address list endpoints.
type addressPayload struct {
	ID          ID     `json:"id"`
	FullName    string `json:"full_name"`
	FullAddress string `json:"full_address"`
	PhoneNumber string `json:"phone_number"`
	IsDefault   bool   `json:"is_default"`
}

func (p addressPayload) toDomain() address.Address {
	return address.Address{
		ID:          p.ID.String(),
		FullName:    p.FullName,
		FullAddress: p.FullAddress,
		PhoneNumber: p.PhoneNumber,
		IsDefault:   p.IsDefault,
	}
}

// ListAddresses fetches the shopper's saved addresses from
// GET /orders/address/manage/, used by the wizard's address step.
func (c *Client) ListAddresses(ctx context.Context) ([]address.Address, error) {
	var resp struct {
		Addresses []addressPayload `json:"addresses"`
	}
	if err := c.get(ctx, "/orders/address/manage/", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]address.Address, len(resp.Addresses))
	for i, a := range resp.Addresses {
		out[i] = a.toDomain()
	}
	return out, nil
}

// SaveOrderAddress posts a new address through the wizard's sub-form
// endpoint POST /orders/manage-address/. The form must already be validated.
func (c *Client) SaveOrderAddress(ctx context.Context, form *address.Form) error {
	return c.postJSON(ctx, "/orders/manage-address/", form, nil)
}

// SaveAddress creates or edits an address through the address-book endpoint
// POST /address/save/. Editing is signalled by a non-empty AddressID.
func (c *Client) SaveAddress(ctx context.Context, form *address.Form) (message string, err error) {
	var resp envelope
	if err := c.postJSON(ctx, "/address/save/", form, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// GetAddress fetches a single address's form fields for editing from
// GET /address/get-details/.
func (c *Client) GetAddress(ctx context.Context, addressID string) (*address.Form, error) {
	var resp struct {
		Address struct {
			ID           ID     `json:"id"`
			FullName     string `json:"full_name"`
			PhoneNumber  string `json:"phone_number"`
			AddressLine1 string `json:"address_line1"`
			AddressLine2 string `json:"address_line2"`
			Landmark     string `json:"landmark"`
			Pincode      string `json:"pincode"`
			City         string `json:"city"`
			State        string `json:"state"`
			IsApartment  bool   `json:"is_apartment"`
			FloorNumber  string `json:"floor_number"`
			IsDefault    bool   `json:"is_default"`
		} `json:"address"`
	}
	if err := c.get(ctx, "/address/get-details/", url.Values{"address_id": {addressID}}, &resp); err != nil {
		return nil, err
	}
	a := resp.Address
	return &address.Form{
		AddressID:    a.ID.String(),
		FullName:     a.FullName,
		PhoneNumber:  a.PhoneNumber,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		Landmark:     a.Landmark,
		Pincode:      a.Pincode,
		City:         a.City,
		State:        a.State,
		IsApartment:  a.IsApartment,
		FloorNumber:  a.FloorNumber,
		IsDefault:    a.IsDefault,
	}, nil
}

// DeleteAddress removes an address via POST /address/delete/.
func (c *Client) DeleteAddress(ctx context.Context, addressID string) (message string, err error) {
	var resp envelope
	body := struct {
		AddressID string `json:"address_id"`
	}{AddressID: addressID}
	if err := c.postJSON(ctx, "/address/delete/", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SetDefaultAddress marks an address as the default via
// POST /address/set-default/.
func (c *Client) SetDefaultAddress(ctx context.Context, addressID string) (message string, err error) {
	var resp envelope
	body := struct {
		AddressID string `json:"address_id"`
	}{AddressID: addressID}
	if err := c.postJSON(ctx, "/address/set-default/", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// LookupPincode resolves a postal code to city/state and serviceability via
// GET /address/pincode-lookup/.
func (c *Client) LookupPincode(ctx context.Context, pincode string) (*address.PincodeInfo, error) {
	var resp struct {
		Data struct {
			City        string `json:"city"`
			State       string `json:"state"`
			Serviceable bool   `json:"is_serviceable"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/address/pincode-lookup/", url.Values{"pincode": {pincode}}, &resp); err != nil {
		return nil, err
	}
	return &address.PincodeInfo{
		City:        resp.Data.City,
		State:       resp.Data.State,
		Serviceable: resp.Data.Serviceable,
	}, nil
}
