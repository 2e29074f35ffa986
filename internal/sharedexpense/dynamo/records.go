package dynamo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
)

// splitRecord is the stored shape of a split. Amounts are kept as decimal
// strings; member_ids lists registered participants for the list scan.
type splitRecord struct {
	ID           int64               `dynamodbav:"id"`
	ExpenseID    int64               `dynamodbav:"expense_id"`
	PayerID      int64               `dynamodbav:"payer_id"`
	MemberIDs    []int64             `dynamodbav:"member_ids,numberset,omitempty"`
	TotalAmount  string              `dynamodbav:"total_amount"`
	SplitType    string              `dynamodbav:"split_type"`
	Description  string              `dynamodbav:"description"`
	GroupName    *string             `dynamodbav:"group_name,omitempty"`
	IsSettled    bool                `dynamodbav:"is_settled"`
	SettledAt    *time.Time          `dynamodbav:"settled_at,omitempty"`
	Version      int64               `dynamodbav:"version"`
	CreatedAt    time.Time           `dynamodbav:"created_at"`
	UpdatedAt    time.Time           `dynamodbav:"updated_at"`
	Participants []participantRecord `dynamodbav:"participants"`
}

type participantRecord struct {
	ID              int64      `dynamodbav:"id"`
	UserID          *int64     `dynamodbav:"user_id,omitempty"`
	ExternalName    *string    `dynamodbav:"external_name,omitempty"`
	ExternalEmail   *string    `dynamodbav:"external_email,omitempty"`
	ShareAmount     string     `dynamodbav:"share_amount"`
	SharePercentage *string    `dynamodbav:"share_percentage,omitempty"`
	ShareUnits      *int       `dynamodbav:"share_units,omitempty"`
	IsPaid          bool       `dynamodbav:"is_paid"`
	PaidAt          *time.Time `dynamodbav:"paid_at,omitempty"`
	Status          string     `dynamodbav:"status"`
	Notes           *string    `dynamodbav:"notes,omitempty"`
	DisputeReason   *string    `dynamodbav:"dispute_reason,omitempty"`
	UpdatedAt       time.Time  `dynamodbav:"updated_at"`
}

// eventRecord is keyed by split id with a sort key that orders by time
type eventRecord struct {
	SharedExpenseID int64     `dynamodbav:"shared_expense_id"`
	SortKey         string    `dynamodbav:"sk"`
	ID              string    `dynamodbav:"id"`
	Type            string    `dynamodbav:"event_type"`
	ActorID         int64     `dynamodbav:"actor_id"`
	ParticipantID   *int64    `dynamodbav:"participant_id,omitempty"`
	Detail          string    `dynamodbav:"detail"`
	CreatedAt       time.Time `dynamodbav:"created_at"`
}

// fixed-width so the sort key orders lexically
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

func toSplitRecord(se *sharedexpense.SharedExpense) splitRecord {
	rec := splitRecord{
		ID:           se.ID,
		ExpenseID:    se.ExpenseID,
		PayerID:      se.PayerID,
		TotalAmount:  se.TotalAmount.String(),
		SplitType:    string(se.SplitType),
		Description:  se.Description,
		GroupName:    se.GroupName,
		IsSettled:    se.IsSettled,
		SettledAt:    se.SettledAt,
		Version:      se.Version,
		CreatedAt:    se.CreatedAt,
		UpdatedAt:    se.UpdatedAt,
		Participants: make([]participantRecord, len(se.Participants)),
	}

	for i, p := range se.Participants {
		pr := participantRecord{
			ID:            p.ID,
			UserID:        p.UserID,
			ExternalName:  p.ExternalName,
			ExternalEmail: p.ExternalEmail,
			ShareAmount:   p.ShareAmount.String(),
			ShareUnits:    p.ShareUnits,
			IsPaid:        p.IsPaid,
			PaidAt:        p.PaidAt,
			Status:        string(p.Status),
			Notes:         p.Notes,
			DisputeReason: p.DisputeReason,
			UpdatedAt:     p.UpdatedAt,
		}
		if p.SharePercentage != nil {
			pct := p.SharePercentage.String()
			pr.SharePercentage = &pct
		}
		if p.UserID != nil {
			rec.MemberIDs = append(rec.MemberIDs, *p.UserID)
		}
		rec.Participants[i] = pr
	}

	return rec
}

func (rec splitRecord) toDomain() (*sharedexpense.SharedExpense, error) {
	total, err := money.Parse(rec.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("split %d has invalid total: %w", rec.ID, err)
	}

	se := &sharedexpense.SharedExpense{
		ID:           rec.ID,
		ExpenseID:    rec.ExpenseID,
		PayerID:      rec.PayerID,
		TotalAmount:  total,
		SplitType:    split.SplitType(rec.SplitType),
		Description:  rec.Description,
		GroupName:    rec.GroupName,
		IsSettled:    rec.IsSettled,
		SettledAt:    rec.SettledAt,
		Version:      rec.Version,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Participants: make([]*sharedexpense.Participant, len(rec.Participants)),
	}

	for i, pr := range rec.Participants {
		share, err := money.Parse(pr.ShareAmount)
		if err != nil {
			return nil, fmt.Errorf("participant %d has invalid share: %w", pr.ID, err)
		}
		p := &sharedexpense.Participant{
			ID:              pr.ID,
			SharedExpenseID: rec.ID,
			UserID:          pr.UserID,
			ExternalName:    pr.ExternalName,
			ExternalEmail:   pr.ExternalEmail,
			ShareAmount:     share,
			ShareUnits:      pr.ShareUnits,
			IsPaid:          pr.IsPaid,
			PaidAt:          pr.PaidAt,
			Status:          sharedexpense.ParticipantStatus(pr.Status),
			Notes:           pr.Notes,
			DisputeReason:   pr.DisputeReason,
			UpdatedAt:       pr.UpdatedAt,
		}
		if pr.SharePercentage != nil {
			pct, err := decimal.NewFromString(*pr.SharePercentage)
			if err != nil {
				return nil, fmt.Errorf("participant %d has invalid percentage: %w", pr.ID, err)
			}
			p.SharePercentage = &pct
		}
		se.Participants[i] = p
	}

	return se, nil
}

func toEventRecord(e sharedexpense.Event) eventRecord {
	id := e.ID.String()
	return eventRecord{
		SharedExpenseID: e.SharedExpenseID,
		SortKey:         e.CreatedAt.UTC().Format(sortKeyLayout) + "#" + id,
		ID:              id,
		Type:            string(e.Type),
		ActorID:         e.ActorID,
		ParticipantID:   e.ParticipantID,
		Detail:          e.Detail,
		CreatedAt:       e.CreatedAt,
	}
}
