package balance

// SummaryResponse represents a user's balance summary
type SummaryResponse struct {
	TotalYouOwe    string `json:"total_you_owe"`
	TotalOwedToYou string `json:"total_owed_to_you"`
	NetBalance     string `json:"net_balance"`
	UnsettledCount int    `json:"unsettled_count"`
}

// AmountResponse represents a single aggregated amount
type AmountResponse struct {
	Amount string `json:"amount"`
}

// CounterpartyResponse represents the net balance with another party
type CounterpartyResponse struct {
	UserID  *int64 `json:"user_id,omitempty"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Message string `json:"message"` // e.g., "You owe John 50.00" or "John owes you 30.00"
}

// ToResponse converts a Summary to a SummaryResponse DTO
func (s *Summary) ToResponse() *SummaryResponse {
	return &SummaryResponse{
		TotalYouOwe:    s.TotalYouOwe.String(),
		TotalOwedToYou: s.TotalOwedToYou.String(),
		NetBalance:     s.NetBalance.String(),
		UnsettledCount: s.UnsettledCount,
	}
}
