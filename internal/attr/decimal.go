package attr

import (
	"github.com/shopspring/decimal"
)

// Decimal is a SCIM decimal value with arbitrary precision. On the wire it
// is a plain JSON number (RFC 7643 section 2.3.3), never a quoted string.
type Decimal struct {
	value decimal.Decimal
}

// NewDecimal wraps an existing decimal value.
func NewDecimal(value decimal.Decimal) Decimal {
	return Decimal{value: value}
}

// NewDecimalFromString parses a decimal literal such as "2.5" or "-0.125".
func NewDecimalFromString(s string) (Decimal, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{value: value}, nil
}

// NewDecimalFromFloat converts a float64, preserving the shortest decimal
// representation that round-trips.
func NewDecimalFromFloat(f float64) Decimal {
	return Decimal{value: decimal.NewFromFloat(f)}
}

// NewDecimalFromInt converts an integer.
func NewDecimalFromInt(i int64) Decimal {
	return Decimal{value: decimal.NewFromInt(i)}
}

// Value returns the underlying decimal for arithmetic or database binding.
func (d Decimal) Value() decimal.Decimal {
	return d.value
}

// String returns the decimal literal without an exponent.
func (d Decimal) String() string {
	return d.value.String()
}

// IsZero reports whether the value is exactly zero.
func (d Decimal) IsZero() bool {
	return d.value.IsZero()
}

// Equal reports numeric equality, so 2.50 equals 2.5.
func (d Decimal) Equal(other Decimal) bool {
	return d.value.Equal(other.value)
}

// MarshalJSON emits an unquoted JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.value.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal literal.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	return d.value.UnmarshalJSON(data)
}
