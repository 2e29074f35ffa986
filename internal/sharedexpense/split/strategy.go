package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/pkg/apperr"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual       SplitType = "EQUAL"
	SplitTypePercentage  SplitType = "PERCENTAGE"
	SplitTypeExactAmount SplitType = "EXACT_AMOUNT"
	SplitTypeShares      SplitType = "SHARES"
)

// Valid reports whether t names a known strategy
func (t SplitType) Valid() bool {
	switch t {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeExactAmount, SplitTypeShares:
		return true
	}
	return false
}

// SplitInput carries the strategy-specific fields of one participant.
// Only the field matching the strategy is read.
type SplitInput struct {
	Percentage *decimal.Decimal
	Units      *int
	Amount     *money.Money
}

// Strategy is the interface that all split strategies must implement.
// Implementations are pure: the returned shares are in input order.
type Strategy interface {
	// Calculate computes the share of every participant
	Calculate(totalAmount money.Money, participants []SplitInput) ([]money.Money, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(totalAmount money.Money, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	case SplitTypeExactAmount:
		return &ExactAmountStrategy{}, nil
	case SplitTypeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

var (
	ErrNoParticipants        = apperr.Validation("at least one participant is required")
	ErrUnknownSplitType      = apperr.Validation("split type must be EQUAL, PERCENTAGE, EXACT_AMOUNT or SHARES")
	ErrNegativeTotal         = apperr.Validation("total amount cannot be negative")
	ErrMissingPercentage     = apperr.Validation("share_percentage is required")
	ErrPercentageOutOfRange  = apperr.Validation("share_percentage must be between 0 and 100")
	ErrInvalidPercentages    = apperr.Validation("percentages must add up to 100")
	ErrMissingExactAmount    = apperr.Validation("share_amount is required")
	ErrNegativeAmount        = apperr.Validation("share_amount cannot be negative")
	ErrMissingShareUnits     = apperr.Validation("share_units is required")
	ErrNonPositiveShareUnits = apperr.Validation("share_units must be a positive integer")
	ErrZeroTotalUnits        = apperr.Validation("total share units must be greater than 0")
)

// participantError names the offending participant (1-based) and strategy
func participantError(index int, splitType SplitType, err error) error {
	return fmt.Errorf("participant %d: %w for %s split", index+1, err, splitType)
}

func validateCommon(totalAmount money.Money, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if totalAmount.IsNegative() {
		return ErrNegativeTotal
	}
	return nil
}

// distributeRemainder moves the gap between totalAmount and the sum of shares
// onto eligible participants one minor unit at a time, in input order. Shares
// never go negative.
func distributeRemainder(totalAmount money.Money, shares []money.Money, eligible []bool) []money.Money {
	diff := totalAmount.Sub(money.Sum(shares...)).Minor()
	step := money.MinorUnit
	if diff < 0 {
		step = step.Neg()
		diff = -diff
	}

	for diff > 0 {
		moved := false
		for i := range shares {
			if diff == 0 {
				break
			}
			if !eligible[i] {
				continue
			}
			next := shares[i].Add(step)
			if next.IsNegative() {
				continue
			}
			shares[i] = next
			diff--
			moved = true
		}
		if !moved {
			break
		}
	}

	return shares
}
