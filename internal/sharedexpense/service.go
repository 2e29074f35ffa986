package sharedexpense

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fkhayef/sharedexpenses/internal/expense"
	"github.com/fkhayef/sharedexpenses/internal/logger"
	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
	"github.com/fkhayef/sharedexpenses/internal/user"
)

// ExpenseLookup reads originating expenses. A missing expense is (nil, nil).
type ExpenseLookup interface {
	GetByID(ctx context.Context, id int64) (*expense.Expense, error)
}

// UserLookup reads user accounts. A missing user is (nil, nil).
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service handles shared expense business logic
type Service struct {
	store        Store
	expenses     ExpenseLookup
	users        UserLookup
	splitFactory *split.Factory
	now          func() time.Time
}

// NewService creates a new shared expense service
func NewService(store Store, expenses ExpenseLookup, users UserLookup, splitFactory *split.Factory) *Service {
	return &Service{
		store:        store,
		expenses:     expenses,
		users:        users,
		splitFactory: splitFactory,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateSplit divides an expense owned by payerID among the requested participants
func (s *Service) CreateSplit(ctx context.Context, payerID int64, req *CreateSplitRequest) (*SharedExpense, error) {
	if payerID <= 0 || req.ExpenseID <= 0 {
		return nil, ErrInvalidID
	}
	if err := s.requireUser(ctx, payerID, ErrUserNotFound); err != nil {
		return nil, err
	}

	exp, err := s.expenses.GetByID(ctx, req.ExpenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if exp == nil {
		return nil, ErrExpenseNotFound
	}
	if exp.OwnerID != payerID {
		return nil, ErrExpenseNotOwned
	}
	if exp.Amount.IsNegative() {
		return nil, ErrNegativeExpenseAmount
	}
	if req.TotalAmount != nil && !req.TotalAmount.Equal(exp.Amount) {
		return nil, fmt.Errorf("%w: expense amount is %s", ErrTotalAmountMismatch, exp.Amount)
	}

	description := exp.Description
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	groupName := normalizeOptional(req.GroupName)
	if err := validateDetails(&description, groupName); err != nil {
		return nil, err
	}

	participants, err := s.buildParticipants(ctx, req.SplitType, exp.Amount, req.Participants)
	if err != nil {
		return nil, err
	}

	se, err := New(exp.ID, payerID, exp.Amount, req.SplitType, description, groupName, participants, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, se)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("split_id", created.ID).
		Int64("expense_id", created.ExpenseID).
		Int64("payer_id", payerID).
		Str("split_type", string(created.SplitType)).
		Str("total", created.TotalAmount.String()).
		Int("participants", len(created.Participants)).
		Msg("shared expense created")

	return created, nil
}

// UpdateSplit changes details and optionally replaces the participant set
func (s *Service) UpdateSplit(ctx context.Context, callerID, splitID int64, req *UpdateSplitRequest) (*SharedExpense, error) {
	current, err := s.getAuthorized(ctx, callerID, splitID, true)
	if err != nil {
		return nil, err
	}
	if err := current.ensureOpen(); err != nil {
		return nil, err
	}

	var description *string
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		description = &trimmed
	}
	var groupName *string
	if req.GroupName != nil {
		trimmed := strings.TrimSpace(*req.GroupName)
		groupName = &trimmed
	}
	if err := validateDetails(description, groupName); err != nil {
		return nil, err
	}

	if req.SplitType != nil && req.Participants == nil {
		return nil, ErrSplitTypeNeedsPeople
	}

	splitType := current.SplitType
	var participants []*Participant
	if req.Participants != nil {
		if req.SplitType != nil {
			splitType = *req.SplitType
		}
		participants, err = s.buildParticipants(ctx, splitType, current.TotalAmount, req.Participants)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Update(ctx, splitID, func(se *SharedExpense) error {
		if !se.IsPayer(callerID) {
			return ErrNotPayer
		}
		now := s.now()
		if err := se.UpdateDetails(description, groupName, callerID, now); err != nil {
			return err
		}
		if participants != nil {
			return se.ReplaceParticipants(splitType, participants, callerID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("split_id", splitID).
		Bool("participants_replaced", participants != nil).
		Msg("shared expense updated")

	return updated, nil
}

// DeleteSplit removes a split that has no recorded payments
func (s *Service) DeleteSplit(ctx context.Context, callerID, splitID int64) error {
	if _, err := s.getAuthorized(ctx, callerID, splitID, true); err != nil {
		return err
	}

	err := s.store.Delete(ctx, splitID, func(se *SharedExpense) error {
		if !se.IsPayer(callerID) {
			return ErrNotPayer
		}
		return se.EnsureDeletable()
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("split_id", splitID).Msg("shared expense deleted")
	return nil
}

// MarkParticipantPaid records a payment. The payer or any registered
// participant may record it.
func (s *Service) MarkParticipantPaid(ctx context.Context, callerID, splitID, participantID int64) (*SharedExpense, error) {
	if _, err := s.getAuthorized(ctx, callerID, splitID, false); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, splitID, func(se *SharedExpense) error {
		if !se.HasAccess(callerID) {
			return ErrAccessDenied
		}
		return se.MarkPaid(participantID, callerID, s.now())
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int64("split_id", splitID).
		Int64("participant_id", participantID).
		Int64("caller_id", callerID).
		Msg("participant marked as paid")
	if updated.IsSettled {
		log.Info().Int64("split_id", splitID).Msg("shared expense settled")
	}

	return updated, nil
}

// DisputeParticipant flags a pending share as disputed. The payer or the
// participant owning the share may dispute it.
func (s *Service) DisputeParticipant(ctx context.Context, callerID, splitID, participantID int64, reason string) (*SharedExpense, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrDisputeReasonRequired
	}
	if utf8.RuneCountInString(reason) > maxNotesLength {
		return nil, ErrNotesTooLong
	}
	if _, err := s.getAuthorized(ctx, callerID, splitID, false); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, splitID, func(se *SharedExpense) error {
		p, err := se.Participant(participantID)
		if err != nil {
			return err
		}
		if !se.IsPayer(callerID) && !p.IsUser(callerID) {
			return ErrNotParticipant
		}
		return se.Dispute(participantID, callerID, reason, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("split_id", splitID).
		Int64("participant_id", participantID).
		Msg("participant share disputed")

	return updated, nil
}

// WaiveParticipant forgives a pending share. Payer only.
func (s *Service) WaiveParticipant(ctx context.Context, callerID, splitID, participantID int64, note *string) (*SharedExpense, error) {
	note = normalizeOptional(note)
	if note != nil && utf8.RuneCountInString(*note) > maxNotesLength {
		return nil, ErrNotesTooLong
	}
	if _, err := s.getAuthorized(ctx, callerID, splitID, true); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, splitID, func(se *SharedExpense) error {
		if !se.IsPayer(callerID) {
			return ErrNotPayer
		}
		return se.Waive(participantID, callerID, note, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("split_id", splitID).
		Int64("participant_id", participantID).
		Bool("settled", updated.IsSettled).
		Msg("participant share waived")

	return updated, nil
}

// SettleSplit marks every outstanding share paid and closes the split. Payer only.
func (s *Service) SettleSplit(ctx context.Context, callerID, splitID int64) (*SharedExpense, error) {
	if _, err := s.getAuthorized(ctx, callerID, splitID, true); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, splitID, func(se *SharedExpense) error {
		if !se.IsPayer(callerID) {
			return ErrNotPayer
		}
		return se.Settle(callerID, s.now())
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Int64("split_id", splitID).Msg("shared expense settled by payer")
	return updated, nil
}

// GetSplit returns a split the caller pays for or participates in
func (s *Service) GetSplit(ctx context.Context, callerID, splitID int64) (*SharedExpense, error) {
	return s.getAuthorized(ctx, callerID, splitID, false)
}

// ListSplits returns every split the caller pays for or participates in
func (s *Service) ListSplits(ctx context.Context, callerID int64, filter ListFilter) ([]*SharedExpense, error) {
	if callerID <= 0 {
		return nil, ErrInvalidID
	}
	filter.GroupName = strings.TrimSpace(filter.GroupName)
	return s.store.ListByUser(ctx, callerID, filter)
}

// ListSplitEvents returns a split's history
func (s *Service) ListSplitEvents(ctx context.Context, callerID, splitID int64) ([]Event, error) {
	if _, err := s.getAuthorized(ctx, callerID, splitID, false); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, splitID)
}

// getAuthorized loads a split and checks the caller's access. The write paths
// repeat the check under the store's write guard.
func (s *Service) getAuthorized(ctx context.Context, callerID, splitID int64, payerOnly bool) (*SharedExpense, error) {
	if callerID <= 0 || splitID <= 0 {
		return nil, ErrInvalidID
	}

	se, err := s.store.GetByID(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if !se.HasAccess(callerID) {
		return nil, ErrAccessDenied
	}
	if payerOnly && !se.IsPayer(callerID) {
		return nil, ErrNotPayer
	}
	return se, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64, notFound error) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return fmt.Errorf("%w: %d", notFound, userID)
	}
	return nil
}

// buildParticipants validates identities and runs the split strategy
func (s *Service) buildParticipants(ctx context.Context, splitType split.SplitType, total money.Money, inputs []ParticipantInput) ([]*Participant, error) {
	strategy, err := s.splitFactory.Create(splitType)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, split.ErrNoParticipants
	}

	normalized := make([]ParticipantInput, len(inputs))
	for i, in := range inputs {
		normalized[i] = normalizeInput(in)
	}
	if err := validateIdentities(normalized); err != nil {
		return nil, err
	}
	for _, in := range normalized {
		if in.UserID != nil {
			if err := s.requireUser(ctx, *in.UserID, ErrParticipantUserNotFound); err != nil {
				return nil, err
			}
		}
	}

	splitInputs := make([]split.SplitInput, len(normalized))
	for i, in := range normalized {
		splitInputs[i] = split.SplitInput{
			Percentage: in.SharePercentage,
			Units:      in.ShareUnits,
			Amount:     in.ShareAmount,
		}
	}
	shares, err := strategy.Calculate(total, splitInputs)
	if err != nil {
		return nil, err
	}

	participants := make([]*Participant, len(normalized))
	for i, in := range normalized {
		p := &Participant{
			UserID:        in.UserID,
			ExternalName:  in.ExternalName,
			ExternalEmail: in.ExternalEmail,
			ShareAmount:   shares[i],
			Status:        StatusPending,
			Notes:         in.Notes,
		}
		switch splitType {
		case split.SplitTypePercentage:
			p.SharePercentage = in.SharePercentage
		case split.SplitTypeShares:
			p.ShareUnits = in.ShareUnits
		}
		participants[i] = p
	}

	return participants, nil
}

func normalizeInput(in ParticipantInput) ParticipantInput {
	out := in
	if in.ExternalName != nil {
		name := strings.TrimSpace(*in.ExternalName)
		out.ExternalName = &name
	}
	out.ExternalEmail = normalizeOptional(in.ExternalEmail)
	out.Notes = normalizeOptional(in.Notes)
	return out
}

func validateIdentities(inputs []ParticipantInput) error {
	users := make(map[int64]bool, len(inputs))
	names := make(map[string]bool, len(inputs))

	for i, in := range inputs {
		if err := validateIdentity(in); err != nil {
			return fmt.Errorf("participant %d: %w", i+1, err)
		}
		if in.UserID != nil {
			if users[*in.UserID] {
				return fmt.Errorf("participant %d: %w: user %d", i+1, ErrRepeatedParticipant, *in.UserID)
			}
			users[*in.UserID] = true
			continue
		}
		key := strings.ToLower(*in.ExternalName)
		if names[key] {
			return fmt.Errorf("participant %d: %w: %s", i+1, ErrRepeatedParticipant, *in.ExternalName)
		}
		names[key] = true
	}

	return nil
}

func validateIdentity(in ParticipantInput) error {
	switch {
	case in.UserID != nil && in.ExternalName != nil:
		return ErrInvalidParticipant
	case in.UserID != nil:
		if *in.UserID <= 0 {
			return ErrInvalidID
		}
		if in.ExternalEmail != nil {
			return ErrInvalidParticipant
		}
	case in.ExternalName != nil:
		if *in.ExternalName == "" {
			return ErrExternalNameRequired
		}
		if utf8.RuneCountInString(*in.ExternalName) > maxExternalNameLength {
			return ErrExternalNameTooLong
		}
		if in.ExternalEmail != nil {
			if _, err := mail.ParseAddress(*in.ExternalEmail); err != nil {
				return ErrInvalidEmail
			}
		}
	default:
		return ErrInvalidParticipant
	}

	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

func validateDetails(description, groupName *string) error {
	if description != nil && utf8.RuneCountInString(*description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if groupName != nil && utf8.RuneCountInString(*groupName) > maxGroupNameLength {
		return ErrGroupNameTooLong
	}
	return nil
}

// normalizeOptional trims s and maps blank to nil
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
