package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// CategoryTotal is the current user's spend in one category.
type CategoryTotal struct {
	Category models.Category
	Amount   decimal.Decimal
}

// TotalSpent sums the full amount of every expense, regardless of who carries it.
func TotalSpent(snapshot *models.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, e := range snapshot.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalUserSpent sums the current user's share over all expenses.
func TotalUserSpent(snapshot *models.Snapshot) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range snapshot.Expenses {
		share, err := UserShare(snapshot.User.ID, e)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(share)
	}
	return total, nil
}

// SpendingByCategory groups the current user's share by category.
// Categories appear in the order they are first encountered in the expense
// list; categories whose total is zero are omitted.
func SpendingByCategory(snapshot *models.Snapshot) ([]CategoryTotal, error) {
	var order []models.Category
	totals := make(map[models.Category]decimal.Decimal)

	for _, e := range snapshot.Expenses {
		share, err := UserShare(snapshot.User.ID, e)
		if err != nil {
			return nil, fmt.Errorf("failed to compute share: %w", err)
		}
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
			totals[e.Category] = decimal.Zero
		}
		totals[e.Category] = totals[e.Category].Add(share)
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		if totals[c].IsZero() {
			continue
		}
		result = append(result, CategoryTotal{Category: c, Amount: totals[c]})
	}
	return result, nil
}
