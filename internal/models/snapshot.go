package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts are JSON numbers in the persisted record. Quoted amounts are
	// still accepted when decoding.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultBudgetTotal is the monthly budget of a fresh ledger.
var DefaultBudgetTotal = decimal.NewFromInt(10000)

// Budget is the monthly budget of the current user.
// Spent and Remaining are derived from the expenses and recomputed after every
// mutation; Total is the only source of truth.
type Budget struct {
	Total     decimal.Decimal `json:"total"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Snapshot is the complete persisted state of a ledger.
type Snapshot struct {
	User      User      `json:"user"`
	Budget    Budget    `json:"budget"`
	Roommates []Person  `json:"roommates"`
	Expenses  []Expense `json:"expenses"`
}

// DefaultSnapshot returns the state of a ledger that has never been saved.
func DefaultSnapshot() *Snapshot {
	user := User{
		ID:    "user-1",
		Name:  "You",
		Color: "hsl(145, 55%, 38%)",
	}
	return &Snapshot{
		User: user,
		Budget: Budget{
			Total:     DefaultBudgetTotal,
			Spent:     decimal.Zero,
			Remaining: DefaultBudgetTotal,
		},
		Roommates: []Person{user.Person()},
		Expenses:  []Expense{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		User:      s.User,
		Budget:    s.Budget,
		Roommates: append([]Person{}, s.Roommates...),
		Expenses:  make([]Expense, len(s.Expenses)),
	}
	for i, e := range s.Expenses {
		c.Expenses[i] = e.Clone()
	}
	return c
}

// FindPerson returns the roommate with the given ID.
func (s *Snapshot) FindPerson(id string) (Person, bool) {
	for _, p := range s.Roommates {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}
