package shared

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidMoney indicates a money string that cannot be represented.
var ErrInvalidMoney = errors.New("invalid money amount")

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Money is an amount in centavos. All settlement math runs on this integer
// representation; decimals only appear at the edges.
type Money int64

// Reais builds Money from a whole currency amount.
func Reais(units int64) Money {
	return Money(units * 100)
}

// ParseMoney converts a decimal string such as "10.00" into Money. Amounts
// finer than one centavo are rejected instead of rounded.
func ParseMoney(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMoney)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, raw)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-centavo precision", ErrInvalidMoney, raw)
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidMoney, raw)
	}
	return Money(cents.IntPart()), nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount with two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float64 returns the amount in currency units for display purposes.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON renders Money as a bare JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" {
		*m = 0
		return nil
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
