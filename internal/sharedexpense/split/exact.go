package split

import "github.com/fkhayef/sharedexpenses/internal/money"

// =============================================================================
// EXACT AMOUNT SPLIT STRATEGY
// Each participant owes exactly the amount supplied for them
// =============================================================================

// ExactAmountStrategy implements the Strategy interface for exact amount splits
type ExactAmountStrategy struct{}

// Type returns the split type identifier
func (s *ExactAmountStrategy) Type() SplitType {
	return SplitTypeExactAmount
}

// Validate requires a non-negative amount on every participant. Whether the
// amounts add up to the total is checked by the aggregate, not here.
func (s *ExactAmountStrategy) Validate(totalAmount money.Money, participants []SplitInput) error {
	if err := validateCommon(totalAmount, participants); err != nil {
		return err
	}

	for i, p := range participants {
		if p.Amount == nil {
			return participantError(i, SplitTypeExactAmount, ErrMissingExactAmount)
		}
		if p.Amount.IsNegative() {
			return participantError(i, SplitTypeExactAmount, ErrNegativeAmount)
		}
	}

	return nil
}

// Calculate returns the supplied amounts unchanged
func (s *ExactAmountStrategy) Calculate(totalAmount money.Money, participants []SplitInput) ([]money.Money, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	shares := make([]money.Money, len(participants))
	for i, p := range participants {
		shares[i] = *p.Amount
	}

	return shares, nil
}
