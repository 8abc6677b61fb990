// Package money provides the fixed-point decimal value types used in every
// financial calculation. Monetary amounts carry two fractional digits, share
// quantities four. All arithmetic is exact decimal arithmetic; rounding is
// explicit (round-half-even) and happens only where a caller asks for it.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Declared scales. Parsing rejects values with more fractional digits than
// the scale allows, so equality checks are always exact.
const (
	CurrencyScale = 2
	QuantityScale = 4
)

// Money is a signed monetary amount in the ledger's single currency.
type Money struct {
	value decimal.Decimal
}

// Zero is the zero monetary amount.
var Zero = Money{}

// ParseMoney parses a decimal string into a Money value.
// Values with more than CurrencyScale fractional digits are rejected rather
// than silently truncated.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -CurrencyScale {
		return Money{}, fmt.Errorf("amount %q exceeds %d decimal places", s, CurrencyScale)
	}
	return Money{value: d}, nil
}

// MustMoney parses a decimal string and panics on failure. Intended for
// constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal wraps a raw decimal as Money without scale checking.
// Callers own the rounding boundary; see Round.
func FromDecimal(d decimal.Decimal) Money {
	return Money{value: d}
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money        { return Money{value: m.value.Neg()} }

// Mul multiplies a per-unit amount by a quantity. The result is exact and
// may carry more fractional digits than CurrencyScale; round at the boundary
// where the value becomes a ledger amount.
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value)} }

// Round applies round-half-even at CurrencyScale. This is the single
// rounding boundary for monetary values.
func (m Money) Round() Money { return Money{value: m.value.RoundBank(CurrencyScale)} }

func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

// String renders the amount with exactly CurrencyScale fractional digits.
func (m Money) String() string { return m.value.StringFixed(CurrencyScale) }

// MarshalJSON encodes the amount as a JSON string to avoid any float64
// round-trip in clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMoney(unquote(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer; amounts persist as exact decimal text.
func (m Money) Value() (driver.Value, error) {
	return m.value.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("scan money %q: %w", s, err)
	}
	m.value = d
	return nil
}

func unquote(data []byte) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported source type %T", src)
	}
}
