package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a share count. Quantities are compared exactly in their
// fixed-point representation, never through floating point.
type Quantity struct {
	value decimal.Decimal
}

// ZeroQuantity is the zero share count.
var ZeroQuantity = Quantity{}

// ParseQuantity parses a decimal string into a Quantity.
// Values with more than QuantityScale fractional digits are rejected.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	if d.Exponent() < -QuantityScale {
		return Quantity{}, fmt.Errorf("quantity %q exceeds %d decimal places", s, QuantityScale)
	}
	return Quantity{value: d}, nil
}

// MustQuantity parses a decimal string and panics on failure. Intended for
// constants and tests.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Add(r Quantity) Quantity { return Quantity{value: q.value.Add(r.value)} }
func (q Quantity) Sub(r Quantity) Quantity { return Quantity{value: q.value.Sub(r.value)} }

func (q Quantity) Equal(r Quantity) bool              { return q.value.Equal(r.value) }
func (q Quantity) LessThan(r Quantity) bool           { return q.value.LessThan(r.value) }
func (q Quantity) GreaterThan(r Quantity) bool        { return q.value.GreaterThan(r.value) }
func (q Quantity) GreaterThanOrEqual(r Quantity) bool { return q.value.GreaterThanOrEqual(r.value) }
func (q Quantity) IsZero() bool                       { return q.value.IsZero() }
func (q Quantity) IsPositive() bool                   { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool                   { return q.value.IsNegative() }

// Min returns the smaller of two quantities.
func (q Quantity) Min(r Quantity) Quantity {
	if q.LessThan(r) {
		return q
	}
	return r
}

// Decimal returns the underlying decimal value.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

// String renders the quantity with exactly QuantityScale fractional digits.
func (q Quantity) String() string { return q.value.StringFixed(QuantityScale) }

// MarshalJSON encodes the quantity as a JSON string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	parsed, err := ParseQuantity(unquote(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Value implements driver.Valuer; quantities persist as exact decimal text.
func (q Quantity) Value() (driver.Value, error) {
	return q.value.String(), nil
}

// Scan implements sql.Scanner.
func (q *Quantity) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan quantity: %w", err)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("scan quantity %q: %w", s, err)
	}
	q.value = d
	return nil
}
