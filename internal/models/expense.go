package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of expense categories.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryGroceries     Category = "Groceries"
	CategoryUtilities     Category = "Utilities"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryOther         Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryUtilities,
	CategoryTransport,
	CategoryEntertainment,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ExpenseType tells whether an expense is carried by the payer alone or split.
type ExpenseType string

const (
	ExpenseTypePersonal ExpenseType = "personal"
	ExpenseTypeShared   ExpenseType = "shared"
)

// Valid reports whether t is personal or shared.
func (t ExpenseType) Valid() bool {
	return t == ExpenseTypePersonal || t == ExpenseTypeShared
}

// Expense represents a single recorded expense.
// Expenses are immutable once added, except for participant removal when a
// referenced person is deleted.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// Title is the human-readable description (e.g. "Electricity bill").
	Title string `json:"title"`

	// Amount is the full amount paid. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// Category is one of the fixed categories.
	Category Category `json:"category"`

	// Type is personal or shared.
	Type ExpenseType `json:"type"`

	// Payer is the ID of the person who paid.
	Payer string `json:"paidBy"`

	// Participants are the IDs of the people splitting the expense equally.
	// Never empty; for personal expenses it is exactly [Payer].
	Participants []string `json:"sharedWith"`

	// Date is when the expense was recorded.
	Date time.Time `json:"date"`
}

// IsShared reports whether the expense is split among participants.
func (e Expense) IsShared() bool {
	return e.Type == ExpenseTypeShared
}

// HasParticipant reports whether personID is in the participant set.
func (e Expense) HasParticipant(personID string) bool {
	for _, p := range e.Participants {
		if p == personID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with e.
func (e Expense) Clone() Expense {
	c := e
	c.Participants = append([]string(nil), e.Participants...)
	return c
}
