package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/sharedexpenses/internal/money"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var hundredPercent = decimal.NewFromInt(100)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate requires a percentage on every participant, each within 0-100,
// summing to exactly 100. No tolerance is applied to the sum.
func (s *PercentageStrategy) Validate(totalAmount money.Money, participants []SplitInput) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	total := decimal.Zero
	for i, p := range participants {
		if p.Percentage == nil {
			return participantError(i, SplitTypePercentage, ErrMissingPercentage)
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundredPercent) {
			return participantError(i, SplitTypePercentage, ErrPercentageOutOfRange)
		}
		total = total.Add(*p.Percentage)
	}

	if !total.Equal(hundredPercent) {
		return fmt.Errorf("%w: current total is %s", ErrInvalidPercentages, total.String())
	}

	return nil
}

// Calculate applies each percentage to the total, rounding half-up. Rounding
// drift is settled one cent at a time on participants with a non-zero percentage.
func (s *PercentageStrategy) Calculate(totalAmount money.Money, participants []SplitInput) ([]money.Money, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]money.Money, len(participants))
	eligible := make([]bool, len(participants))
	for i, p := range participants {
		shares[i] = totalAmount.Percent(*p.Percentage)
		eligible[i] = p.Percentage.IsPositive()
	}

	return distributeRemainder(totalAmount, shares, eligible), nil
}
