package address

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// Address is a saved shipping address as returned by the address list
// endpoints. FullAddress is the server-formatted single-line form.
type Address struct {
	ID          string
	FullName    string
	FullAddress string
	PhoneNumber string
	IsDefault   bool
}

// PincodeInfo is the result of a postal-code lookup used to auto-fill the
// city and state fields of the address form.
type PincodeInfo struct {
	City        string
	State       string
	Serviceable bool
}

// Form holds the fields of the address create/edit form. Validation rules
// match the client-side checks of the storefront: required-field presence, a
// 10-digit phone number and a 6-digit postal code. Everything else is the
// server's to judge.
type Form struct {
	AddressID    string `json:"address_id,omitempty"`
	FullName     string `json:"full_name" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"required,len=10,numeric"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Landmark     string `json:"landmark,omitempty"`
	Pincode      string `json:"pincode" validate:"required,len=6,numeric"`
	City         string `json:"city"`
	State        string `json:"state"`
	IsApartment  bool   `json:"is_apartment"`
	FloorNumber  string `json:"floor_number,omitempty"`
	IsDefault    bool   `json:"is_default"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single invalid form field with a user-facing
// message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates all invalid fields of one form submission.
// A form failing validation never reaches the network.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "invalid address form: " + strings.Join(msgs, "; ")
}

// Validate checks the form against the client-side rules. It returns a
// *ValidationError listing every offending field, or nil when the form may
// be submitted.
func (f *Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate address form")
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return ve
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "PhoneNumber":
		if fe.Tag() != "required" {
			return "Please enter a valid 10-digit phone number"
		}
	case "Pincode":
		if fe.Tag() != "required" {
			return "Please enter a valid 6-digit pincode"
		}
	}
	return "This field is required"
}
