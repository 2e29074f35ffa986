package balance

import (
	"context"
	"fmt"

	"github.com/fkhayef/sharedexpenses/internal/logger"
	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
	"github.com/fkhayef/sharedexpenses/internal/user"
)

// Snapshotter lists the splits a user is involved in from one consistent read
type Snapshotter interface {
	ListByUser(ctx context.Context, userID int64, filter sharedexpense.ListFilter) ([]*sharedexpense.SharedExpense, error)
}

// UserLookup resolves counterparty names
type UserLookup interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*user.User, error)
}

// Service aggregates balances across splits. It never writes.
type Service struct {
	splits Snapshotter
	users  UserLookup
}

// NewService creates a new balance service
func NewService(splits Snapshotter, users UserLookup) *Service {
	return &Service{
		splits: splits,
		users:  users,
	}
}

// involved loads every split involving the user, settled or not, in one
// snapshot. A waived entry on a settled split is still unpaid.
func (s *Service) involved(ctx context.Context, userID int64) ([]*sharedexpense.SharedExpense, error) {
	if userID <= 0 {
		return nil, sharedexpense.ErrInvalidID
	}
	splits, err := s.splits.ListByUser(ctx, userID, sharedexpense.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load splits for balances: %w", err)
	}
	return splits, nil
}

// GetOwedByUser returns what the user still owes other payers
func (s *Service) GetOwedByUser(ctx context.Context, userID int64) (money.Money, error) {
	summary, err := s.GetSummary(ctx, userID)
	if err != nil {
		return money.Zero, err
	}
	return summary.TotalYouOwe, nil
}

// GetOwedToUser returns what others still owe the user as payer
func (s *Service) GetOwedToUser(ctx context.Context, userID int64) (money.Money, error) {
	summary, err := s.GetSummary(ctx, userID)
	if err != nil {
		return money.Zero, err
	}
	return summary.TotalOwedToYou, nil
}

// GetSummary returns owed, owing, net and the number of open splits
func (s *Service) GetSummary(ctx context.Context, userID int64) (*Summary, error) {
	splits, err := s.involved(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(userID, splits)
	logger.FromContext(ctx).Debug().
		Int64("user_id", userID).
		Str("net_balance", summary.NetBalance.String()).
		Int("unsettled", summary.UnsettledCount).
		Msg("balance summary computed")

	return &summary, nil
}

// GetCounterpartyBalances returns the net position with each other party,
// with registered users resolved to display names.
func (s *Service) GetCounterpartyBalances(ctx context.Context, userID int64) ([]*CounterpartyResponse, error) {
	splits, err := s.involved(ctx, userID)
	if err != nil {
		return nil, err
	}

	counterparties := Counterparties(userID, splits)

	ids := make([]int64, 0, len(counterparties))
	for _, c := range counterparties {
		if c.UserID != nil {
			ids = append(ids, *c.UserID)
		}
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve counterparties: %w", err)
	}

	responses := make([]*CounterpartyResponse, len(counterparties))
	for i, c := range counterparties {
		name := c.Name
		if c.UserID != nil {
			if u, ok := users[*c.UserID]; ok {
				name = u.DisplayName()
			} else {
				name = fmt.Sprintf("user #%d", *c.UserID)
			}
		}

		var message string
		switch {
		case c.Amount.IsPositive():
			message = fmt.Sprintf("%s owes you %s", name, c.Amount)
		case c.Amount.IsNegative():
			message = fmt.Sprintf("You owe %s %s", name, c.Amount.Abs())
		default:
			message = fmt.Sprintf("You and %s are settled up", name)
		}

		responses[i] = &CounterpartyResponse{
			UserID:  c.UserID,
			Name:    name,
			Amount:  c.Amount.String(),
			Message: message,
		}
	}

	return responses, nil
}
