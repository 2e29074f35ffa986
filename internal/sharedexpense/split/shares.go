package split

import "github.com/fkhayef/sharedexpenses/internal/money"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense by weighted units, e.g. 1 unit per adult, 2 per couple
// =============================================================================

// SharesStrategy implements the Strategy interface for unit-based splits
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() SplitType {
	return SplitTypeShares
}

// Validate requires a positive whole number of units on every participant
func (s *SharesStrategy) Validate(totalAmount money.Money, participants []SplitInput) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	totalUnits := 0
	firstZero := -1
	for i, p := range participants {
		if p.Units == nil {
			return participantError(i, SplitTypeShares, ErrMissingShareUnits)
		}
		if *p.Units < 0 {
			return participantError(i, SplitTypeShares, ErrNonPositiveShareUnits)
		}
		if *p.Units == 0 && firstZero < 0 {
			firstZero = i
		}
		totalUnits += *p.Units
	}

	if totalUnits == 0 {
		return ErrZeroTotalUnits
	}
	if firstZero >= 0 {
		return participantError(firstZero, SplitTypeShares, ErrNonPositiveShareUnits)
	}

	return nil
}

// Calculate prices one unit at total/units (half-up) and multiplies by each
// participant's units. Drift from the per-unit rounding is spread one cent at
// a time in input order.
func (s *SharesStrategy) Calculate(totalAmount money.Money, participants []SplitInput) ([]money.Money, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	totalUnits := 0
	for _, p := range participants {
		totalUnits += *p.Units
	}
	perUnit := totalAmount.DivInt(int64(totalUnits))

	shares := make([]money.Money, len(participants))
	eligible := make([]bool, len(participants))
	for i, p := range participants {
		shares[i] = perUnit.MulInt(int64(*p.Units))
		eligible[i] = true
	}

	return distributeRemainder(totalAmount, shares, eligible), nil
}
