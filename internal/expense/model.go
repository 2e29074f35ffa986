package expense

import (
	"time"

	"github.com/fkhayef/sharedexpenses/internal/money"
)

// Expense is the originating expense record a split is created from. It is
// owned by the expense service and only read here.
type Expense struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"owner_id"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
	ExpenseDate *time.Time  `json:"expense_date,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
