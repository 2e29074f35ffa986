package balance

import (
	"sort"
	"strings"

	"github.com/fkhayef/sharedexpenses/internal/money"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

// Summary is a user's position across every split they are involved in.
// UnsettledCount counts only open splits.
type Summary struct {
	TotalYouOwe    money.Money
	TotalOwedToYou money.Money
	NetBalance     money.Money
	UnsettledCount int
}

// Counterparty is the net outstanding amount between the user and one other
// party. A positive Amount means the counterparty owes the user.
type Counterparty struct {
	UserID *int64
	Name   string
	Amount money.Money
}

// owes reports whether p is an unpaid debt of userID to the payer
func owes(se *sharedexpense.SharedExpense, p *sharedexpense.Participant, userID int64) bool {
	return !se.IsPayer(userID) && p.IsUser(userID) && p.Outstanding()
}

// owedTo reports whether p is an unpaid debt to userID as payer
func owedTo(se *sharedexpense.SharedExpense, p *sharedexpense.Participant, userID int64) bool {
	return se.IsPayer(userID) && !p.IsUser(userID) && p.Outstanding()
}

// Summarize computes a summary from one set of splits. Splits the user is not
// involved in contribute nothing.
func Summarize(userID int64, splits []*sharedexpense.SharedExpense) Summary {
	summary := Summary{
		TotalYouOwe:    money.Zero,
		TotalOwedToYou: money.Zero,
	}

	for _, se := range splits {
		if !se.HasAccess(userID) {
			continue
		}
		if !se.IsSettled {
			summary.UnsettledCount++
		}
		for _, p := range se.Participants {
			switch {
			case owes(se, p, userID):
				summary.TotalYouOwe = summary.TotalYouOwe.Add(p.ShareAmount)
			case owedTo(se, p, userID):
				summary.TotalOwedToYou = summary.TotalOwedToYou.Add(p.ShareAmount)
			}
		}
	}

	summary.NetBalance = summary.TotalOwedToYou.Sub(summary.TotalYouOwe)
	return summary
}

// Counterparties nets outstanding amounts per other party. Registered users
// are keyed by id with an empty Name; external participants by name.
func Counterparties(userID int64, splits []*sharedexpense.SharedExpense) []*Counterparty {
	byUser := make(map[int64]*Counterparty)
	byName := make(map[string]*Counterparty)

	userEntry := func(id int64) *Counterparty {
		c, ok := byUser[id]
		if !ok {
			uid := id
			c = &Counterparty{UserID: &uid, Amount: money.Zero}
			byUser[id] = c
		}
		return c
	}

	for _, se := range splits {
		for _, p := range se.Participants {
			switch {
			case owes(se, p, userID):
				c := userEntry(se.PayerID)
				c.Amount = c.Amount.Sub(p.ShareAmount)
			case owedTo(se, p, userID):
				if p.UserID != nil {
					c := userEntry(*p.UserID)
					c.Amount = c.Amount.Add(p.ShareAmount)
					continue
				}
				key := strings.ToLower(strings.TrimSpace(*p.ExternalName))
				c, ok := byName[key]
				if !ok {
					c = &Counterparty{Name: strings.TrimSpace(*p.ExternalName), Amount: money.Zero}
					byName[key] = c
				}
				c.Amount = c.Amount.Add(p.ShareAmount)
			}
		}
	}

	result := make([]*Counterparty, 0, len(byUser)+len(byName))
	for _, c := range byUser {
		result = append(result, c)
	}
	for _, c := range byName {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if (a.UserID == nil) != (b.UserID == nil) {
			return a.UserID != nil
		}
		if a.UserID != nil {
			return *a.UserID < *b.UserID
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return result
}
