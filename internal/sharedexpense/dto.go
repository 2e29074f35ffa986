package sharedexpense

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
)

// ParticipantInput describes one participant of a new split. Exactly one of
// UserID and ExternalName must be set; the share field must match the split type.
type ParticipantInput struct {
	UserID          *int64           `json:"user_id,omitempty"`
	ExternalName    *string          `json:"external_name,omitempty"`
	ExternalEmail   *string          `json:"external_email,omitempty"`
	SharePercentage *decimal.Decimal `json:"share_percentage,omitempty" swaggertype:"number"`
	ShareUnits      *int             `json:"share_units,omitempty"`
	ShareAmount     *money.Money     `json:"share_amount,omitempty" swaggertype:"string"`
	Notes           *string          `json:"notes,omitempty"`
}

// CreateSplitRequest represents the request to split an expense
type CreateSplitRequest struct {
	ExpenseID    int64              `json:"expense_id"`
	TotalAmount  *money.Money       `json:"total_amount,omitempty" swaggertype:"string"`
	SplitType    split.SplitType    `json:"split_type"`
	Description  *string            `json:"description,omitempty"`
	GroupName    *string            `json:"group_name,omitempty"`
	Participants []ParticipantInput `json:"participants"`
}

// UpdateSplitRequest represents the request to update a split. Participants,
// when present, replace the whole set.
type UpdateSplitRequest struct {
	Description  *string            `json:"description,omitempty"`
	GroupName    *string            `json:"group_name,omitempty"`
	SplitType    *split.SplitType   `json:"split_type,omitempty"`
	Participants []ParticipantInput `json:"participants,omitempty"`
}

// DisputeParticipantRequest represents the request to dispute a share
type DisputeParticipantRequest struct {
	Reason string `json:"reason"`
}

// WaiveParticipantRequest represents the request to waive a share
type WaiveParticipantRequest struct {
	Note *string `json:"note,omitempty"`
}

// SharedExpenseResponse represents the response for a split
type SharedExpenseResponse struct {
	ID           int64                  `json:"id"`
	ExpenseID    int64                  `json:"expense_id"`
	PayerID      int64                  `json:"payer_id"`
	TotalAmount  string                 `json:"total_amount"`
	SplitType    split.SplitType        `json:"split_type"`
	Description  string                 `json:"description"`
	GroupName    *string                `json:"group_name,omitempty"`
	IsSettled    bool                   `json:"is_settled"`
	SettledAt    *string                `json:"settled_at,omitempty"`
	Version      int64                  `json:"version"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
	Participants []*ParticipantResponse `json:"participants"`
}

// ParticipantResponse represents the response for a ledger entry
type ParticipantResponse struct {
	ID              int64             `json:"id"`
	UserID          *int64            `json:"user_id,omitempty"`
	ExternalName    *string           `json:"external_name,omitempty"`
	ExternalEmail   *string           `json:"external_email,omitempty"`
	ShareAmount     string            `json:"share_amount"`
	SharePercentage *string           `json:"share_percentage,omitempty"`
	ShareUnits      *int              `json:"share_units,omitempty"`
	IsPaid          bool              `json:"is_paid"`
	PaidAt          *string           `json:"paid_at,omitempty"`
	Status          ParticipantStatus `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	DisputeReason   *string           `json:"dispute_reason,omitempty"`
}

// EventResponse represents one history entry
type EventResponse struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ActorID       int64     `json:"actor_id"`
	ParticipantID *int64    `json:"participant_id,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

const timeLayout = "2006-01-02T15:04:05Z"

// ToResponse converts a SharedExpense model to a SharedExpenseResponse DTO
func (se *SharedExpense) ToResponse() *SharedExpenseResponse {
	resp := &SharedExpenseResponse{
		ID:           se.ID,
		ExpenseID:    se.ExpenseID,
		PayerID:      se.PayerID,
		TotalAmount:  se.TotalAmount.String(),
		SplitType:    se.SplitType,
		Description:  se.Description,
		GroupName:    se.GroupName,
		IsSettled:    se.IsSettled,
		Version:      se.Version,
		CreatedAt:    se.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:    se.UpdatedAt.UTC().Format(timeLayout),
		Participants: make([]*ParticipantResponse, len(se.Participants)),
	}
	if se.SettledAt != nil {
		settledAt := se.SettledAt.UTC().Format(timeLayout)
		resp.SettledAt = &settledAt
	}
	for i, p := range se.Participants {
		resp.Participants[i] = p.ToResponse()
	}
	return resp
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse() *ParticipantResponse {
	resp := &ParticipantResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		ExternalName:  p.ExternalName,
		ExternalEmail: p.ExternalEmail,
		ShareAmount:   p.ShareAmount.String(),
		ShareUnits:    p.ShareUnits,
		IsPaid:        p.IsPaid,
		Status:        p.Status,
		Notes:         p.Notes,
		DisputeReason: p.DisputeReason,
	}
	if p.SharePercentage != nil {
		pct := p.SharePercentage.String()
		resp.SharePercentage = &pct
	}
	if p.PaidAt != nil {
		paidAt := p.PaidAt.UTC().Format(timeLayout)
		resp.PaidAt = &paidAt
	}
	return resp
}

// ToResponse converts an Event to an EventResponse DTO
func (e Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:            e.ID.String(),
		Type:          e.Type,
		ActorID:       e.ActorID,
		ParticipantID: e.ParticipantID,
		Detail:        e.Detail,
		CreatedAt:     e.CreatedAt.UTC().Format(timeLayout),
	}
}
