package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// Direction tells which way money flows between the current user and another person.
type Direction string

const (
	// DirectionTheyOweYou means the other person owes the current user.
	DirectionTheyOweYou Direction = "they_owe_you"
	// DirectionYouOweThem means the current user owes the other person.
	DirectionYouOweThem Direction = "you_owe_them"
)

// settleThreshold is the smallest transfer worth suggesting.
var settleThreshold = decimal.New(1, -2)

// netPrecision is the number of decimal places nets are rounded to. Equal
// splits are cut off at decimal.DivisionPrecision places, so a balance that
// cancels out can be left with a remainder in the last digit.
const netPrecision = 8

// MemberBalance represents the balance information for one person.
type MemberBalance struct {
	PersonID  string
	TotalPaid decimal.Decimal // Total amount paid across shared expenses
	TotalOwed decimal.Decimal // Total share this person carries
	Net       decimal.Decimal // Positive = owed money, Negative = owes money
}

// Settlement is the signed balance between the current user and one other person.
type Settlement struct {
	Person    models.Person
	Amount    decimal.Decimal // Always positive
	Direction Direction
}

// DebtEdge represents a suggested transfer from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// MemberBalances aggregates who paid what and who owes what over the shared
// expenses. Personal expenses are ignored.
//
// Algorithm:
// - For each shared expense: payer contributed +amount, each participant owes amount/|participants|
// - Aggregate: net = total_paid - total_owed, rounded to netPrecision places
//
// Members are returned in the order they are first encountered (payer before
// participants, expenses in list order) so results are deterministic.
func MemberBalances(expenses []models.Expense) ([]MemberBalance, error) {
	var order []string
	balances := make(map[string]*MemberBalance)

	get := func(id string) *MemberBalance {
		bal, exists := balances[id]
		if !exists {
			bal = &MemberBalance{
				PersonID:  id,
				TotalPaid: decimal.Zero,
				TotalOwed: decimal.Zero,
			}
			balances[id] = bal
			order = append(order, id)
		}
		return bal
	}

	for _, e := range expenses {
		if !e.IsShared() {
			continue
		}

		share, err := PerPersonShare(e)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate split: %w", err)
		}

		// Payer paid the full amount
		payer := get(e.Payer)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		// Each participant owes their share
		for _, participant := range e.Participants {
			p := get(participant)
			p.TotalOwed = p.TotalOwed.Add(share)
		}
	}

	result := make([]MemberBalance, 0, len(order))
	for _, id := range order {
		bal := balances[id]
		bal.Net = bal.TotalPaid.Sub(bal.TotalOwed).Round(netPrecision)
		result = append(result, *bal)
	}
	return result, nil
}

// PairwiseBalances computes one settlement per other roommate with a nonzero
// balance. A negative balance means the person owes the group and is reported
// as they_owe_you; a positive balance is reported as you_owe_them.
// Balances of people no longer in the roommate list are dropped.
func PairwiseBalances(snapshot *models.Snapshot) ([]Settlement, error) {
	balances, err := MemberBalances(snapshot.Expenses)
	if err != nil {
		return nil, err
	}

	var settlements []Settlement
	for _, bal := range balances {
		if bal.PersonID == snapshot.User.ID || bal.Net.IsZero() {
			continue
		}
		person, ok := snapshot.FindPerson(bal.PersonID)
		if !ok {
			continue
		}

		direction := DirectionYouOweThem
		if bal.Net.IsNegative() {
			direction = DirectionTheyOweYou
		}
		settlements = append(settlements, Settlement{
			Person:    person,
			Amount:    bal.Net.Abs(),
			Direction: direction,
		})
	}
	return settlements, nil
}

// TotalOwedToYou sums the amounts of they_owe_you settlements.
func TotalOwedToYou(settlements []Settlement) decimal.Decimal {
	return sumDirection(settlements, DirectionTheyOweYou)
}

// TotalYouOwe sums the amounts of you_owe_them settlements.
func TotalYouOwe(settlements []Settlement) decimal.Decimal {
	return sumDirection(settlements, DirectionYouOweThem)
}

// NetBalance is positive when the current user is owed money overall.
func NetBalance(settlements []Settlement) decimal.Decimal {
	net := decimal.Zero
	for _, s := range settlements {
		if s.Direction == DirectionTheyOweYou {
			net = net.Add(s.Amount)
		} else {
			net = net.Sub(s.Amount)
		}
	}
	return net
}

func sumDirection(settlements []Settlement, d Direction) decimal.Decimal {
	total := decimal.Zero
	for _, s := range settlements {
		if s.Direction == d {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// SuggestTransfers simplifies the group balances into a short list of
// transfers that clears every debt.
//
// Greedy algorithm: debtors and creditors are matched in order, each transfer
// being the smaller of what the debtor owes and what the creditor is owed.
func SuggestTransfers(balances []MemberBalance) []DebtEdge {
	var debtors, creditors []MemberBalance
	for _, bal := range balances {
		if bal.Net.IsPositive() {
			creditors = append(creditors, bal)
		} else if bal.Net.IsNegative() {
			debtors = append(debtors, bal)
		}
	}

	debtorBalance := make(map[string]decimal.Decimal, len(debtors))
	creditorBalance := make(map[string]decimal.Decimal, len(creditors))
	for _, d := range debtors {
		debtorBalance[d.PersonID] = d.Net.Neg()
	}
	for _, c := range creditors {
		creditorBalance[c.PersonID] = c.Net
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].PersonID
		creditor := creditors[j].PersonID

		amount := decimal.Min(debtorBalance[debtor], creditorBalance[creditor])
		if amount.GreaterThan(settleThreshold) {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		debtorBalance[debtor] = debtorBalance[debtor].Sub(amount)
		creditorBalance[creditor] = creditorBalance[creditor].Sub(amount)

		// Move to next debtor/creditor if fully settled
		if debtorBalance[debtor].LessThan(settleThreshold) {
			i++
		}
		if creditorBalance[creditor].LessThan(settleThreshold) {
			j++
		}
	}
	return edges
}
