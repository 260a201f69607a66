package api

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// ID is an entity identifier on the wire. The storefront emits identifiers
// inconsistently as JSON numbers or strings; ID normalizes both to a string,
// which is also how every endpoint accepts them back.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode id string")
		}
		*id = ID(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return errors.Wrap(err, "decode id number")
		}
		*id = ID(n.String())
	case jx.Null:
		if err := d.Null(); err != nil {
			return err
		}
		*id = ""
	default:
		return errors.Errorf("unexpected id token %q", d.Next())
	}
	return nil
}

// String returns the identifier as sent on the wire.
func (id ID) String() string { return string(id) }

// Money is a monetary amount on the wire. The storefront emits amounts as
// either JSON numbers or decimal strings ("499.00"); Money normalizes both
// into a decimal. Null and the empty string decode to zero.
type Money struct {
	decimal.Decimal
}

// UnmarshalJSON accepts a JSON number, decimal string, empty string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return errors.Wrap(err, "decode amount")
		}
		dec, err := decimal.NewFromString(n.String())
		if err != nil {
			return errors.Wrap(err, "parse amount")
		}
		m.Decimal = dec
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode amount string")
		}
		if s == "" {
			m.Decimal = decimal.Zero
			return nil
		}
		dec, err := decimal.NewFromString(s)
		if err != nil {
			return errors.Wrapf(err, "parse amount %q", s)
		}
		m.Decimal = dec
	case jx.Null:
		if err := d.Null(); err != nil {
			return err
		}
		m.Decimal = decimal.Zero
	default:
		return errors.Errorf("unexpected amount token %q", d.Next())
	}
	return nil
}

// MarshalJSON emits the amount as a decimal string, matching what the
// storefront itself renders.
func (m Money) MarshalJSON() ([]byte, error) {
	e := &jx.Encoder{}
	e.Str(m.Decimal.String())
	return e.Bytes(), nil
}
