package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/calculator"
	"github.com/mmynk/roomledger/internal/models"
)

// LedgerService messages.

type GetDashboardRequest struct{}

type CategorySpend struct {
	Category models.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type GetDashboardResponse struct {
	Budget         models.Budget    `json:"budget"`
	Percentage     decimal.Decimal  `json:"percentage"`
	Tier           calculator.Tier  `json:"tier"`
	Message        string           `json:"message"`
	ExpenseCount   int              `json:"expenseCount"`
	Categories     []CategorySpend  `json:"categories"`
	RecentExpenses []models.Expense `json:"recentExpenses"`
}

type ListExpensesRequest struct {
	Category models.Category    `json:"category,omitempty"`
	Type     models.ExpenseType `json:"type,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

type AddExpenseRequest struct {
	Title      string             `json:"title"`
	Amount     decimal.Decimal    `json:"amount"`
	Category   models.Category    `json:"category"`
	Type       models.ExpenseType `json:"type"`
	PaidBy     string             `json:"paidBy"`
	SharedWith []string           `json:"sharedWith,omitempty"`
}

type AddExpenseResponse struct {
	Expense models.Expense `json:"expense"`
	Budget  models.Budget  `json:"budget"`
}

type DeleteExpenseRequest struct {
	ID string `json:"id"`
}

type DeleteExpenseResponse struct {
	Budget models.Budget `json:"budget"`
}

type ListPeopleRequest struct{}

type ListPeopleResponse struct {
	People []models.Person `json:"people"`
}

type AddPersonRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type AddPersonResponse struct {
	Person models.Person `json:"person"`
}

type DeletePersonRequest struct {
	ID string `json:"id"`
}

type DeletePersonResponse struct{}

type UpdateBudgetRequest struct {
	Total decimal.Decimal `json:"total"`
}

type UpdateBudgetResponse struct {
	Budget models.Budget `json:"budget"`
}

type GetSettlementsRequest struct{}

type SettlementView struct {
	Person    models.Person        `json:"person"`
	Amount    decimal.Decimal      `json:"amount"`
	Direction calculator.Direction `json:"type"`
}

type GetSettlementsResponse struct {
	Settlements    []SettlementView `json:"settlements"`
	NetBalance     decimal.Decimal  `json:"netBalance"`
	TotalOwedToYou decimal.Decimal  `json:"totalOwedToYou"`
	TotalYouOwe    decimal.Decimal  `json:"totalYouOwe"`
	OwedToYouCount int              `json:"owedToYouCount"`
	YouOweCount    int              `json:"youOweCount"`
}

type SettleWithRequest struct {
	PersonID string `json:"personId"`
}

type SettleWithResponse struct {
	Removed int `json:"removed"`
}

type GetGroupBalancesRequest struct{}

type MemberBalanceView struct {
	PersonID  string          `json:"personId"`
	Name      string          `json:"name,omitempty"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
	Net       decimal.Decimal `json:"net"`
}

type TransferView struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetGroupBalancesResponse struct {
	Balances  []MemberBalanceView `json:"balances"`
	Transfers []TransferView      `json:"transfers"`
}

type GetSnapshotRequest struct{}

type GetSnapshotResponse struct {
	Snapshot *models.Snapshot `json:"snapshot"`
}

// AuthService messages.

type LoginRequest struct {
	StudentID string `json:"studentId"`
	Password  string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
	Enrolled  bool        `json:"enrolled"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	User models.User `json:"user"`
}
