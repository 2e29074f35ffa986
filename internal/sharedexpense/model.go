package sharedexpense

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
)

// ParticipantStatus represents the payment status of a ledger entry
type ParticipantStatus string

const (
	StatusPending  ParticipantStatus = "PENDING"
	StatusPaid     ParticipantStatus = "PAID"
	StatusDisputed ParticipantStatus = "DISPUTED"
	StatusWaived   ParticipantStatus = "WAIVED"
)

// Valid reports whether s is a known status
func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDisputed, StatusWaived:
		return true
	}
	return false
}

// SharedExpense is the aggregate root: one paid expense divided among participants
type SharedExpense struct {
	ID          int64           `json:"id"`
	ExpenseID   int64           `json:"expense_id"`
	PayerID     int64           `json:"payer_id"`
	TotalAmount money.Money     `json:"total_amount"`
	SplitType   split.SplitType `json:"split_type"`
	Description string          `json:"description"`
	GroupName   *string         `json:"group_name,omitempty"`
	IsSettled   bool            `json:"is_settled"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Participants []*Participant `json:"participants"`

	// events recorded by mutations and not yet persisted
	events []Event
}

// Participant is one participant's obligation within a split. Exactly one of
// UserID and ExternalName is set.
type Participant struct {
	ID              int64             `json:"id"`
	SharedExpenseID int64             `json:"shared_expense_id"`
	UserID          *int64            `json:"user_id,omitempty"`
	ExternalName    *string           `json:"external_name,omitempty"`
	ExternalEmail   *string           `json:"external_email,omitempty"`
	ShareAmount     money.Money       `json:"share_amount"`
	SharePercentage *decimal.Decimal  `json:"share_percentage,omitempty"`
	ShareUnits      *int              `json:"share_units,omitempty"`
	IsPaid          bool              `json:"is_paid"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	Status          ParticipantStatus `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	DisputeReason   *string           `json:"dispute_reason,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsRegisteredUser reports whether the participant references a user account
func (p *Participant) IsRegisteredUser() bool {
	return p.UserID != nil
}

// IsUser reports whether the participant is the given registered user
func (p *Participant) IsUser(userID int64) bool {
	return p.UserID != nil && *p.UserID == userID
}

// Satisfied reports whether the entry counts towards settlement
func (p *Participant) Satisfied() bool {
	return p.Status == StatusPaid || p.Status == StatusWaived
}

// Outstanding reports whether the share is unpaid. Waived and disputed
// entries stay outstanding; only settlement treats a waiver as satisfied.
func (p *Participant) Outstanding() bool {
	return !p.IsPaid
}

// ListFilter narrows ListSplits results
type ListFilter struct {
	// GroupName matches as a case-insensitive substring when non-empty
	GroupName string
	// Settled restricts to settled or open splits when non-nil
	Settled *bool
}

// Matches reports whether se passes the filter
func (f ListFilter) Matches(se *SharedExpense) bool {
	if f.Settled != nil && se.IsSettled != *f.Settled {
		return false
	}
	if f.GroupName != "" {
		if se.GroupName == nil || !strings.Contains(strings.ToLower(*se.GroupName), strings.ToLower(f.GroupName)) {
			return false
		}
	}
	return true
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Normalize fills in defaults and caps the page size
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Slice returns the part of splits that falls on this page
func (p Page) Slice(splits []*SharedExpense) []*SharedExpense {
	start := (p.Number - 1) * p.Size
	if start >= len(splits) {
		return []*SharedExpense{}
	}
	end := start + p.Size
	if end > len(splits) {
		end = len(splits)
	}
	return splits[start:end]
}

// TotalPages is the number of pages needed for total items
func (p Page) TotalPages(total int) int {
	return (total + p.Size - 1) / p.Size
}

// SortNewestFirst orders splits by creation time, newest first, then by id
func SortNewestFirst(splits []*SharedExpense) {
	sort.SliceStable(splits, func(i, j int) bool {
		if !splits[i].CreatedAt.Equal(splits[j].CreatedAt) {
			return splits[i].CreatedAt.After(splits[j].CreatedAt)
		}
		return splits[i].ID > splits[j].ID
	})
}

// EventType names a recorded change to a split
type EventType string

const (
	EventCreated             EventType = "created"
	EventUpdated             EventType = "updated"
	EventParticipantPaid     EventType = "participant_paid"
	EventParticipantDisputed EventType = "participant_disputed"
	EventParticipantWaived   EventType = "participant_waived"
	EventSettled             EventType = "settled"
)

// Event is one entry of a split's history
type Event struct {
	ID              uuid.UUID `json:"id"`
	SharedExpenseID int64     `json:"shared_expense_id"`
	Type            EventType `json:"type"`
	ActorID         int64     `json:"actor_id"`
	ParticipantID   *int64    `json:"participant_id,omitempty"`
	Detail          string    `json:"detail,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
