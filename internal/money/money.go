package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every Money value carries
const Scale int32 = 2

var (
	Zero = Money{}

	// MinorUnit is the smallest representable amount (0.01)
	MinorUnit = FromMinor(1)

	hundred = decimal.NewFromInt(100)
)

// Money is a fixed-precision currency amount. All constructors round half-up
// (half away from zero) to two fractional digits.
type Money struct {
	d decimal.Decimal
}

// New rounds d to two decimals
func New(d decimal.Decimal) Money {
	return Money{d: d.Round(Scale)}
}

// FromMinor builds an amount from minor units (cents)
func FromMinor(minor int64) Money {
	return Money{d: decimal.New(minor, -Scale)}
}

// Parse reads a decimal string. More than two fractional digits is rejected
// rather than silently rounded.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return fromExact(d)
}

// MustParse is Parse for literals in tests and fixtures
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func fromExact(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Truncate(Scale)) {
		return Zero, fmt.Errorf("amount %s has more than %d decimal places", d.String(), Scale)
	}
	return Money{d: d.Round(Scale)}, nil
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// MulInt multiplies by an integer; the result is exact
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// DivInt divides by n and rounds half-up to two decimals
func (m Money) DivInt(n int64) Money {
	return Money{d: m.d.DivRound(decimal.NewFromInt(n), Scale)}
}

// Percent returns pct percent of m, rounded half-up to two decimals
func (m Money) Percent(pct decimal.Decimal) Money {
	return New(m.d.Mul(pct).Div(hundred))
}

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }
func (m Money) Abs() Money { return Money{d: m.d.Abs()} }
func (m Money) Neg() Money { return Money{d: m.d.Neg()} }
func (m Money) Decimal() decimal.Decimal { return m.d }

// Minor returns the amount in minor units
func (m Money) Minor() int64 {
	return m.d.Shift(Scale).IntPart()
}

// String formats with exactly two decimals, e.g. "33.30"
func (m Money) String() string {
	return m.d.StringFixed(Scale)
}

// Sum adds amounts
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// MarshalJSON encodes as a quoted fixed-point string
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts quoted or bare numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	parsed, err := fromExact(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("failed to scan amount: %w", err)
	}
	*m = New(d)
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
