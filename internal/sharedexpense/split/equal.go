package split

import "github.com/fkhayef/sharedexpenses/internal/money"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(totalAmount money.Money, participants []SplitInput) error {
	return validateCommon(totalAmount, participants)
}

// Calculate gives every participant total/N rounded half-up. Leftover cents
// go to the first participants in input order, so the shares sum to the total.
func (s *EqualStrategy) Calculate(totalAmount money.Money, participants []SplitInput) ([]money.Money, error) {
	if err := s.Validate(totalAmount, participants); err != nil {
		return nil, err
	}

	share := totalAmount.DivInt(int64(len(participants)))
	shares := make([]money.Money, len(participants))
	eligible := make([]bool, len(participants))
	for i := range participants {
		shares[i] = share
		eligible[i] = true
	}

	return distributeRemainder(totalAmount, shares, eligible), nil
}
