package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/pkg/apperr"
)

func pct(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func units(n int) *int {
	return &n
}

func amount(s string) *money.Money {
	m := money.MustParse(s)
	return &m
}

func asStrings(shares []money.Money) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.String()
	}
	return out
}

func calculate(t *testing.T, splitType SplitType, total string, inputs []SplitInput) []money.Money {
	t.Helper()
	strategy, err := NewSplitStrategyFactory().Create(splitType)
	require.NoError(t, err)
	require.Equal(t, splitType, strategy.Type())

	shares, err := strategy.Calculate(money.MustParse(total), inputs)
	require.NoError(t, err)
	require.Len(t, shares, len(inputs))
	return shares
}

func TestEqualStrategy(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		n      int
		shares []string
	}{
		{"even", "90.00", 3, []string{"30.00", "30.00", "30.00"}},
		{"remainder to first", "100.00", 3, []string{"33.34", "33.33", "33.33"}},
		{"rounded up then trimmed", "200.00", 3, []string{"66.66", "66.67", "66.67"}},
		{"rounded up then trimmed from first", "0.02", 4, []string{"0.00", "0.00", "0.01", "0.01"}},
		{"single participant", "12.34", 1, []string{"12.34"}},
		{"zero total", "0.00", 2, []string{"0.00", "0.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]SplitInput, tt.n)
			shares := calculate(t, SplitTypeEqual, tt.total, inputs)
			assert.Equal(t, tt.shares, asStrings(shares))
			assert.Equal(t, money.MustParse(tt.total).String(), money.Sum(shares...).String())
		})
	}
}

func TestPercentageStrategy(t *testing.T) {
	t.Run("sixty forty", func(t *testing.T) {
		shares := calculate(t, SplitTypePercentage, "200.00", []SplitInput{
			{Percentage: pct("60")},
			{Percentage: pct("40")},
		})
		assert.Equal(t, []string{"120.00", "80.00"}, asStrings(shares))
	})

	t.Run("rounding drift is reconciled", func(t *testing.T) {
		shares := calculate(t, SplitTypePercentage, "10.00", []SplitInput{
			{Percentage: pct("33.33")},
			{Percentage: pct("33.33")},
			{Percentage: pct("33.34")},
		})
		assert.Equal(t, []string{"3.34", "3.33", "3.33"}, asStrings(shares))
	})

	t.Run("zero percent participant keeps zero", func(t *testing.T) {
		shares := calculate(t, SplitTypePercentage, "0.03", []SplitInput{
			{Percentage: pct("0")},
			{Percentage: pct("50")},
			{Percentage: pct("50")},
		})
		assert.Equal(t, "0.00", shares[0].String())
		assert.Equal(t, "0.03", money.Sum(shares...).String())
	})

	t.Run("sum must be exactly 100", func(t *testing.T) {
		strategy := &PercentageStrategy{}
		err := strategy.Validate(money.MustParse("100.00"), []SplitInput{
			{Percentage: pct("50")},
			{Percentage: pct("49.99")},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidPercentages))
		assert.Contains(t, err.Error(), "99.99")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("over 100 is rejected", func(t *testing.T) {
		_, err := (&PercentageStrategy{}).Calculate(money.MustParse("100.00"), []SplitInput{
			{Percentage: pct("60")},
			{Percentage: pct("60")},
		})
		assert.ErrorIs(t, err, ErrInvalidPercentages)
	})

	t.Run("missing percentage names field and strategy", func(t *testing.T) {
		err := (&PercentageStrategy{}).Validate(money.MustParse("100.00"), []SplitInput{
			{Percentage: pct("100")},
			{Units: units(1)},
		})
		require.ErrorIs(t, err, ErrMissingPercentage)
		assert.Equal(t, "participant 2: share_percentage is required for PERCENTAGE split", err.Error())
	})

	t.Run("out of range", func(t *testing.T) {
		err := (&PercentageStrategy{}).Validate(money.MustParse("100.00"), []SplitInput{
			{Percentage: pct("-10")},
			{Percentage: pct("110")},
		})
		assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	})
}

func TestExactAmountStrategy(t *testing.T) {
	t.Run("amounts pass through", func(t *testing.T) {
		shares := calculate(t, SplitTypeExactAmount, "50.00", []SplitInput{
			{Amount: amount("20.00")},
			{Amount: amount("30.00")},
		})
		assert.Equal(t, []string{"20.00", "30.00"}, asStrings(shares))
	})

	t.Run("mismatched sum is not a strategy error", func(t *testing.T) {
		shares := calculate(t, SplitTypeExactAmount, "50.00", []SplitInput{
			{Amount: amount("20.00")},
			{Amount: amount("20.00")},
		})
		assert.Equal(t, "40.00", money.Sum(shares...).String())
	})

	t.Run("missing amount", func(t *testing.T) {
		err := (&ExactAmountStrategy{}).Validate(money.MustParse("50.00"), []SplitInput{{}})
		require.ErrorIs(t, err, ErrMissingExactAmount)
		assert.Contains(t, err.Error(), "EXACT_AMOUNT")
	})

	t.Run("negative amount", func(t *testing.T) {
		err := (&ExactAmountStrategy{}).Validate(money.MustParse("50.00"), []SplitInput{
			{Amount: amount("-1.00")},
		})
		assert.ErrorIs(t, err, ErrNegativeAmount)
	})
}

func TestSharesStrategy(t *testing.T) {
	t.Run("one two three", func(t *testing.T) {
		shares := calculate(t, SplitTypeShares, "90.00", []SplitInput{
			{Units: units(1)},
			{Units: units(2)},
			{Units: units(3)},
		})
		assert.Equal(t, []string{"15.00", "30.00", "45.00"}, asStrings(shares))
	})

	t.Run("per-unit rounding drift", func(t *testing.T) {
		inputs := make([]SplitInput, 7)
		for i := range inputs {
			inputs[i] = SplitInput{Units: units(1)}
		}
		shares := calculate(t, SplitTypeShares, "100.00", inputs)
		assert.Equal(t, "14.28", shares[0].String())
		assert.Equal(t, "14.29", shares[6].String())
		assert.Equal(t, "100.00", money.Sum(shares...).String())
	})

	t.Run("zero units rejected", func(t *testing.T) {
		err := (&SharesStrategy{}).Validate(money.MustParse("10.00"), []SplitInput{
			{Units: units(0)},
			{Units: units(2)},
		})
		require.ErrorIs(t, err, ErrNonPositiveShareUnits)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Equal(t, "participant 1: share_units must be a positive integer for SHARES split", err.Error())
	})

	t.Run("negative units rejected", func(t *testing.T) {
		err := (&SharesStrategy{}).Validate(money.MustParse("10.00"), []SplitInput{
			{Units: units(3)},
			{Units: units(-1)},
		})
		assert.ErrorIs(t, err, ErrNonPositiveShareUnits)
	})

	t.Run("zero total units", func(t *testing.T) {
		err := (&SharesStrategy{}).Validate(money.MustParse("10.00"), []SplitInput{
			{Units: units(0)},
			{Units: units(0)},
		})
		assert.ErrorIs(t, err, ErrZeroTotalUnits)
	})

	t.Run("missing units", func(t *testing.T) {
		err := (&SharesStrategy{}).Validate(money.MustParse("10.00"), []SplitInput{
			{Units: units(1)},
			{},
		})
		require.ErrorIs(t, err, ErrMissingShareUnits)
		assert.Equal(t, "participant 2: share_units is required for SHARES split", err.Error())
	})
}

func TestCommonValidation(t *testing.T) {
	for _, splitType := range []SplitType{SplitTypeEqual, SplitTypePercentage, SplitTypeExactAmount, SplitTypeShares} {
		strategy, err := NewSplitStrategyFactory().Create(splitType)
		require.NoError(t, err)

		_, err = strategy.Calculate(money.MustParse("10.00"), nil)
		assert.ErrorIs(t, err, ErrNoParticipants, splitType)

		_, err = strategy.Calculate(money.MustParse("-10.00"), []SplitInput{{}})
		assert.ErrorIs(t, err, ErrNegativeTotal, splitType)
	}
}

func TestFactoryUnknownType(t *testing.T) {
	_, err := NewSplitStrategyFactory().Create("EVEN")
	require.ErrorIs(t, err, ErrUnknownSplitType)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.False(t, SplitType("EVEN").Valid())
	assert.True(t, SplitTypeShares.Valid())
}
