package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// Tier classifies how much of the budget has been used.
type Tier string

const (
	TierDoingGreat    Tier = "doing_great"
	TierWatchSpending Tier = "watch_spending"
	TierAlmostAtLimit Tier = "almost_at_limit"
	TierOverBudget    Tier = "over_budget"
)

var (
	hundred    = decimal.NewFromInt(100)
	watchMark  = decimal.NewFromInt(50)
	almostMark = decimal.NewFromInt(80)
)

// Message is the dashboard text for the tier.
func (t Tier) Message() string {
	switch t {
	case TierDoingGreat:
		return "You're doing great!"
	case TierWatchSpending:
		return "Watch your spending"
	case TierAlmostAtLimit:
		return "Almost at limit!"
	default:
		return "Over budget!"
	}
}

// Status is the budget usage of the current user.
type Status struct {
	Percentage decimal.Decimal
	Tier       Tier
}

// BudgetStatus returns the share of the budget already spent, in percent, and its tier.
// A non-positive total yields 0%.
func BudgetStatus(total, spent decimal.Decimal) Status {
	pct := decimal.Zero
	if total.IsPositive() {
		pct = spent.Div(total).Mul(hundred)
	}

	tier := TierOverBudget
	switch {
	case pct.LessThan(watchMark):
		tier = TierDoingGreat
	case pct.LessThan(almostMark):
		tier = TierWatchSpending
	case pct.LessThan(hundred):
		tier = TierAlmostAtLimit
	}
	return Status{Percentage: pct, Tier: tier}
}

// Dashboard is the budget overview of the current user.
type Dashboard struct {
	BudgetTotal  decimal.Decimal
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Status       Status
	ExpenseCount int
	Categories   []CategoryTotal
}

// BuildDashboard computes the dashboard from a snapshot. Spent and remaining
// are recomputed from the expenses, not read from the stored budget.
func BuildDashboard(snapshot *models.Snapshot) (Dashboard, error) {
	spent, err := TotalUserSpent(snapshot)
	if err != nil {
		return Dashboard{}, err
	}
	categories, err := SpendingByCategory(snapshot)
	if err != nil {
		return Dashboard{}, err
	}

	total := snapshot.Budget.Total
	return Dashboard{
		BudgetTotal:  total,
		Spent:        spent,
		Remaining:    total.Sub(spent),
		Status:       BudgetStatus(total, spent),
		ExpenseCount: len(snapshot.Expenses),
		Categories:   categories,
	}, nil
}
