package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
)

// ErrInvalidExpense is returned when an expense violates the ledger invariants,
// e.g. a shared expense without participants. It signals a bug in the mutator
// layer rather than a user error.
var ErrInvalidExpense = errors.New("invalid expense")

// PerPersonShare returns the equal share of a shared expense:
// amount / number of participants.
func PerPersonShare(expense models.Expense) (decimal.Decimal, error) {
	if len(expense.Participants) == 0 {
		return decimal.Zero, fmt.Errorf("%w: expense %q has no participants", ErrInvalidExpense, expense.ID)
	}
	return expense.Amount.Div(decimal.NewFromInt(int64(len(expense.Participants)))), nil
}

// UserShare computes how much of an expense is carried by the current user.
//
// Personal expenses count in full when the current user paid them and not at
// all otherwise. Shared expenses are split equally among all participants,
// whether or not the current user is one of them; callers that need
// membership must check it themselves.
func UserShare(currentUserID string, expense models.Expense) (decimal.Decimal, error) {
	if !expense.IsShared() {
		if expense.Payer == currentUserID {
			return expense.Amount, nil
		}
		return decimal.Zero, nil
	}
	return PerPersonShare(expense)
}
