package sharedexpense

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
)

// New builds an open split with every entry pending. The shares must add up
// to total within one minor unit.
func New(expenseID, payerID int64, total money.Money, splitType split.SplitType, description string, groupName *string, participants []*Participant, now time.Time) (*SharedExpense, error) {
	if err := CheckShareTotal(total, participants); err != nil {
		return nil, err
	}

	se := &SharedExpense{
		ExpenseID:   expenseID,
		PayerID:     payerID,
		TotalAmount: total,
		SplitType:   splitType,
		Description: description,
		GroupName:   groupName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	se.adopt(participants, now)
	se.record(EventCreated, payerID, nil, fmt.Sprintf("%s split of %s among %d participants", splitType, total, len(participants)), now)

	return se, nil
}

// CheckShareTotal verifies the shares sum to total within one minor unit
func CheckShareTotal(total money.Money, participants []*Participant) error {
	sum := money.Zero
	for _, p := range participants {
		sum = sum.Add(p.ShareAmount)
	}
	diff := total.Sub(sum)
	if diff.Abs().Cmp(money.MinorUnit) > 0 {
		return fmt.Errorf("%w: shares total %s, expense total %s, difference %s", ErrShareTotalMismatch, sum, total, diff)
	}
	return nil
}

func (se *SharedExpense) adopt(participants []*Participant, now time.Time) {
	for _, p := range participants {
		p.ID = 0
		p.SharedExpenseID = se.ID
		p.Status = StatusPending
		p.IsPaid = false
		p.PaidAt = nil
		p.DisputeReason = nil
		p.UpdatedAt = now
	}
	se.Participants = participants
}

// IsPayer reports whether userID fronted the expense
func (se *SharedExpense) IsPayer(userID int64) bool {
	return se.PayerID == userID
}

// IsParticipant reports whether userID is a registered participant
func (se *SharedExpense) IsParticipant(userID int64) bool {
	for _, p := range se.Participants {
		if p.IsUser(userID) {
			return true
		}
	}
	return false
}

// HasAccess reports whether userID may read the split
func (se *SharedExpense) HasAccess(userID int64) bool {
	return se.IsPayer(userID) || se.IsParticipant(userID)
}

// Participant returns the entry with the given id
func (se *SharedExpense) Participant(participantID int64) (*Participant, error) {
	for _, p := range se.Participants {
		if p.ID == participantID {
			return p, nil
		}
	}
	return nil, ErrParticipantNotFound
}

// HasPayments reports whether any entry is paid
func (se *SharedExpense) HasPayments() bool {
	for _, p := range se.Participants {
		if p.Status == StatusPaid {
			return true
		}
	}
	return false
}

func (se *SharedExpense) ensureOpen() error {
	if se.IsSettled {
		return ErrAlreadySettled
	}
	return nil
}

// UpdateDetails changes description and group name. Nil leaves a field as is,
// an empty group name clears it.
func (se *SharedExpense) UpdateDetails(description, groupName *string, actorID int64, now time.Time) error {
	if err := se.ensureOpen(); err != nil {
		return err
	}
	if description == nil && groupName == nil {
		return nil
	}

	if description != nil {
		se.Description = *description
	}
	if groupName != nil {
		if *groupName == "" {
			se.GroupName = nil
		} else {
			name := *groupName
			se.GroupName = &name
		}
	}
	se.UpdatedAt = now
	se.record(EventUpdated, actorID, nil, "details updated", now)
	return nil
}

// ReplaceParticipants swaps the whole participant set and split type. It is
// refused once any share has been paid, so a payment history is never lost.
func (se *SharedExpense) ReplaceParticipants(splitType split.SplitType, participants []*Participant, actorID int64, now time.Time) error {
	if err := se.ensureOpen(); err != nil {
		return err
	}
	if se.HasPayments() {
		return ErrReplaceAfterPayments
	}
	if err := CheckShareTotal(se.TotalAmount, participants); err != nil {
		return err
	}

	se.SplitType = splitType
	se.adopt(participants, now)
	se.UpdatedAt = now
	se.record(EventUpdated, actorID, nil, fmt.Sprintf("participants replaced: %s split among %d", splitType, len(participants)), now)
	se.refreshSettlement(actorID, now)
	return nil
}

// MarkPaid moves a pending entry to paid and settles the split when every
// entry is paid or waived.
func (se *SharedExpense) MarkPaid(participantID, actorID int64, now time.Time) error {
	p, err := se.Participant(participantID)
	if err != nil {
		return err
	}
	if err := pendingOnly(p); err != nil {
		return err
	}
	if err := se.ensureOpen(); err != nil {
		return err
	}

	paidAt := now
	p.Status = StatusPaid
	p.IsPaid = true
	p.PaidAt = &paidAt
	p.UpdatedAt = now
	se.UpdatedAt = now
	se.record(EventParticipantPaid, actorID, &p.ID, fmt.Sprintf("%s paid", p.ShareAmount), now)
	se.refreshSettlement(actorID, now)
	return nil
}

// Dispute moves a pending entry to disputed. Disputed entries block automatic
// settlement.
func (se *SharedExpense) Dispute(participantID, actorID int64, reason string, now time.Time) error {
	p, err := se.Participant(participantID)
	if err != nil {
		return err
	}
	if err := pendingOnly(p); err != nil {
		return err
	}
	if err := se.ensureOpen(); err != nil {
		return err
	}

	p.Status = StatusDisputed
	p.DisputeReason = &reason
	p.UpdatedAt = now
	se.UpdatedAt = now
	se.record(EventParticipantDisputed, actorID, &p.ID, reason, now)
	return nil
}

// Waive forgives a pending entry. Waived entries count as satisfied.
func (se *SharedExpense) Waive(participantID, actorID int64, note *string, now time.Time) error {
	p, err := se.Participant(participantID)
	if err != nil {
		return err
	}
	if err := pendingOnly(p); err != nil {
		return err
	}
	if err := se.ensureOpen(); err != nil {
		return err
	}

	p.Status = StatusWaived
	if note != nil {
		p.Notes = note
	}
	p.UpdatedAt = now
	se.UpdatedAt = now
	detail := fmt.Sprintf("%s waived", p.ShareAmount)
	se.record(EventParticipantWaived, actorID, &p.ID, detail, now)
	se.refreshSettlement(actorID, now)
	return nil
}

// Settle forces every pending or disputed entry to paid and closes the split.
// Waived entries stay waived.
func (se *SharedExpense) Settle(actorID int64, now time.Time) error {
	if err := se.ensureOpen(); err != nil {
		return err
	}

	forced := 0
	for _, p := range se.Participants {
		if p.Satisfied() {
			continue
		}
		paidAt := now
		p.Status = StatusPaid
		p.IsPaid = true
		p.PaidAt = &paidAt
		p.UpdatedAt = now
		forced++
	}

	se.close(actorID, now, fmt.Sprintf("settled by payer, %d entries marked paid", forced))
	return nil
}

// EnsureDeletable refuses deletion once a share has been paid
func (se *SharedExpense) EnsureDeletable() error {
	if se.HasPayments() {
		return ErrHasPayments
	}
	return nil
}

// refreshSettlement closes the split once every entry is paid or waived
func (se *SharedExpense) refreshSettlement(actorID int64, now time.Time) {
	if se.IsSettled || len(se.Participants) == 0 {
		return
	}
	for _, p := range se.Participants {
		if !p.Satisfied() {
			return
		}
	}
	se.close(actorID, now, "all participants paid or waived")
}

func (se *SharedExpense) close(actorID int64, now time.Time, detail string) {
	settledAt := now
	se.IsSettled = true
	se.SettledAt = &settledAt
	se.UpdatedAt = now
	se.record(EventSettled, actorID, nil, detail, now)
}

func pendingOnly(p *Participant) error {
	switch p.Status {
	case StatusPaid:
		return ErrAlreadyPaid
	case StatusWaived:
		return ErrParticipantWaived
	case StatusDisputed:
		return ErrParticipantDisputed
	}
	return nil
}

func (se *SharedExpense) record(eventType EventType, actorID int64, participantID *int64, detail string, now time.Time) {
	var pid *int64
	if participantID != nil {
		id := *participantID
		pid = &id
	}
	se.events = append(se.events, Event{
		ID:              uuid.New(),
		SharedExpenseID: se.ID,
		Type:            eventType,
		ActorID:         actorID,
		ParticipantID:   pid,
		Detail:          detail,
		CreatedAt:       now,
	})
}

// TakeEvents returns the events recorded since the last call and clears them.
// Stores persist them in the same unit of work as the aggregate.
func (se *SharedExpense) TakeEvents() []Event {
	events := se.events
	se.events = nil
	for i := range events {
		events[i].SharedExpenseID = se.ID
	}
	return events
}

// Verify checks the aggregate's invariants before it is written. A failure
// means a bug upstream, not bad input.
func (se *SharedExpense) Verify() error {
	if len(se.Participants) == 0 {
		return fmt.Errorf("%w: no participants", ErrInvariantViolated)
	}
	if err := CheckShareTotal(se.TotalAmount, se.Participants); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariantViolated, err)
	}
	if se.IsSettled != (se.SettledAt != nil) {
		return fmt.Errorf("%w: settled flag and settled_at disagree", ErrInvariantViolated)
	}

	users := make(map[int64]bool, len(se.Participants))
	for i, p := range se.Participants {
		if (p.UserID == nil) == (p.ExternalName == nil) {
			return fmt.Errorf("%w: participant %d must have exactly one identity", ErrInvariantViolated, i+1)
		}
		if p.UserID != nil {
			if users[*p.UserID] {
				return fmt.Errorf("%w: user %d listed twice", ErrInvariantViolated, *p.UserID)
			}
			users[*p.UserID] = true
		}
		if !p.Status.Valid() {
			return fmt.Errorf("%w: participant %d has unknown status %q", ErrInvariantViolated, i+1, p.Status)
		}
		if p.IsPaid != (p.Status == StatusPaid) || p.IsPaid != (p.PaidAt != nil) {
			return fmt.Errorf("%w: participant %d paid flag disagrees with status", ErrInvariantViolated, i+1)
		}
		if p.ShareAmount.IsNegative() {
			return fmt.Errorf("%w: participant %d has a negative share", ErrInvariantViolated, i+1)
		}
		if se.IsSettled && !p.Satisfied() {
			return fmt.Errorf("%w: settled split has an unsettled participant", ErrInvariantViolated)
		}
	}

	return nil
}

// Clone returns a deep copy without pending events
func (se *SharedExpense) Clone() *SharedExpense {
	c := *se
	c.events = nil
	c.GroupName = cloneString(se.GroupName)
	c.SettledAt = cloneTime(se.SettledAt)
	c.Participants = make([]*Participant, len(se.Participants))
	for i, p := range se.Participants {
		c.Participants[i] = p.Clone()
	}
	return &c
}

// Clone returns a deep copy of the entry
func (p *Participant) Clone() *Participant {
	c := *p
	if p.UserID != nil {
		id := *p.UserID
		c.UserID = &id
	}
	if p.SharePercentage != nil {
		pct := *p.SharePercentage
		c.SharePercentage = &pct
	}
	if p.ShareUnits != nil {
		units := *p.ShareUnits
		c.ShareUnits = &units
	}
	c.ExternalName = cloneString(p.ExternalName)
	c.ExternalEmail = cloneString(p.ExternalEmail)
	c.Notes = cloneString(p.Notes)
	c.DisputeReason = cloneString(p.DisputeReason)
	c.PaidAt = cloneTime(p.PaidAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
