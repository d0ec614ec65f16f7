// Package ledger holds the people, expenses and budget of one ledger and
// performs mutations that keep expenses and people consistent.
//
// A Store is not safe for concurrent use. Persistence is the caller's job:
// restore a snapshot, mutate, then save Snapshot().
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/calculator"
	"github.com/mmynk/roomledger/internal/models"
)

// Store is the in-memory ledger.
type Store struct {
	user     models.User
	budget   models.Budget
	people   []models.Person
	expenses []models.Expense // most recent first

	now      func() time.Time
	newID    func() string
	validate *validator.Validate
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to timestamp new expenses.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the generator of expense and person IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a Store holding the given snapshot.
func New(snapshot *models.Snapshot, opts ...Option) (*Store, error) {
	s := &Store{
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Restore(snapshot); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns a deep copy of the full ledger state.
func (s *Store) Snapshot() *models.Snapshot {
	snap := &models.Snapshot{
		User:      s.user,
		Budget:    s.budget,
		Roommates: s.people,
		Expenses:  s.expenses,
	}
	return snap.Clone()
}

// Restore replaces the whole ledger state with the snapshot.
// Referential integrity is not re-validated; the derived budget fields are
// recomputed from the restored expenses.
func (s *Store) Restore(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return errors.New("cannot restore a nil snapshot")
	}
	c := snapshot.Clone()

	prev := *s
	s.user = c.User
	s.budget = c.Budget
	s.people = c.Roommates
	s.expenses = c.Expenses
	if err := s.recomputeBudget(); err != nil {
		*s = prev
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return nil
}

// CurrentUser returns the user record of the local operator.
func (s *Store) CurrentUser() models.User {
	return s.user
}

// Budget returns the budget with up-to-date spent and remaining amounts.
func (s *Store) Budget() models.Budget {
	return s.budget
}

// People returns the roommates in insertion order.
func (s *Store) People() []models.Person {
	return append([]models.Person(nil), s.people...)
}

// Person looks up a roommate by ID.
func (s *Store) Person(id string) (models.Person, bool) {
	idx := s.personIndex(id)
	if idx < 0 {
		return models.Person{}, false
	}
	return s.people[idx], true
}

// Expense looks up an expense by ID.
func (s *Store) Expense(id string) (models.Expense, bool) {
	for _, e := range s.expenses {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return models.Expense{}, false
}

// ExpenseFilter narrows an expense listing. Zero fields match everything.
type ExpenseFilter struct {
	Category models.Category
	Type     models.ExpenseType
}

func (f ExpenseFilter) match(e models.Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}

// Expenses lists the expenses matching the filter, most recent first.
func (s *Store) Expenses(filter ExpenseFilter) []models.Expense {
	var result []models.Expense
	for _, e := range s.expenses {
		if filter.match(e) {
			result = append(result, e.Clone())
		}
	}
	return result
}

// AddExpense validates the draft and records a new expense at the front of
// the list. Personal expenses always have the payer as sole participant.
func (s *Store) AddExpense(draft ExpenseDraft) (models.Expense, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if err := checkStruct(s.validate, draft); err != nil {
		return models.Expense{}, err
	}
	if !draft.Amount.IsPositive() {
		return models.Expense{}, invalid("amount", "must be greater than zero")
	}
	if s.personIndex(draft.Payer) < 0 {
		return models.Expense{}, invalid("payer", fmt.Sprintf("unknown person %q", draft.Payer))
	}

	participants := []string{draft.Payer}
	if draft.Type == models.ExpenseTypeShared {
		if err := s.checkParticipants(draft.Payer, draft.Participants); err != nil {
			return models.Expense{}, err
		}
		participants = append([]string(nil), draft.Participants...)
	}

	expense := models.Expense{
		ID:           s.newID(),
		Title:        draft.Title,
		Amount:       draft.Amount,
		Category:     draft.Category,
		Type:         draft.Type,
		Payer:        draft.Payer,
		Participants: participants,
		Date:         s.now(),
	}

	prev := s.expenses
	s.expenses = append([]models.Expense{expense}, s.expenses...)
	if err := s.recomputeBudget(); err != nil {
		s.expenses = prev
		return models.Expense{}, err
	}
	return expense.Clone(), nil
}

func (s *Store) checkParticipants(payer string, participants []string) error {
	if len(participants) == 0 {
		return invalid("participants", "at least one participant is required")
	}
	seen := make(map[string]bool, len(participants))
	for _, id := range participants {
		if id == "" {
			return invalid("participants", "participant ID is required")
		}
		if seen[id] {
			return invalid("participants", fmt.Sprintf("duplicate participant %q", id))
		}
		seen[id] = true
		if s.personIndex(id) < 0 {
			return invalid("participants", fmt.Sprintf("unknown person %q", id))
		}
	}
	if !seen[payer] {
		return invalid("participants", "must include the payer")
	}
	return nil
}

// DeleteExpense removes the expense with the given ID. Unknown IDs are ignored.
func (s *Store) DeleteExpense(id string) error {
	kept := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(s.expenses) {
		return nil
	}
	return s.replaceExpenses(kept)
}

// AddPerson validates the draft and appends a new roommate.
func (s *Store) AddPerson(draft PersonDraft) (models.Person, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Color = strings.TrimSpace(draft.Color)
	if err := checkStruct(s.validate, draft); err != nil {
		return models.Person{}, err
	}

	person := models.Person{
		ID:            s.newID(),
		Name:          draft.Name,
		Color:         draft.Color,
		IsCurrentUser: false,
	}
	s.people = append(s.people, person)
	return person, nil
}

// DeletePerson removes a roommate. Expenses they paid are deleted, they are
// removed from the participants of the others, and expenses left without
// participants are deleted. Unknown IDs are ignored.
func (s *Store) DeletePerson(id string) error {
	if id == s.user.ID {
		return ErrProtectedEntity
	}
	idx := s.personIndex(id)
	if idx < 0 {
		return nil
	}

	kept := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if e.Payer == id {
			continue
		}
		if e.HasParticipant(id) {
			e = e.Clone()
			e.Participants = without(e.Participants, id)
			if len(e.Participants) == 0 {
				continue
			}
		}
		kept = append(kept, e)
	}

	prevPeople := s.people
	s.people = append(append([]models.Person(nil), s.people[:idx]...), s.people[idx+1:]...)
	if err := s.replaceExpenses(kept); err != nil {
		s.people = prevPeople
		return err
	}
	return nil
}

// SettleWith clears the shared expenses between the current user and another
// person: every shared expense paid by either of them in which both take part
// is deleted. It returns the number of deleted expenses.
func (s *Store) SettleWith(personID string) (int, error) {
	if personID == s.user.ID {
		return 0, ErrProtectedEntity
	}
	if s.personIndex(personID) < 0 {
		return 0, nil
	}

	kept := make([]models.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if !e.IsShared() {
			kept = append(kept, e)
			continue
		}
		paidByEither := e.Payer == personID || e.Payer == s.user.ID
		bothShare := e.HasParticipant(personID) && e.HasParticipant(s.user.ID)
		if paidByEither && bothShare {
			continue
		}
		kept = append(kept, e)
	}

	removed := len(s.expenses) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.replaceExpenses(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// UpdateBudgetTotal sets a new monthly budget.
func (s *Store) UpdateBudgetTotal(total decimal.Decimal) error {
	if !total.IsPositive() {
		return invalid("total", "must be greater than zero")
	}
	prev := s.budget
	s.budget.Total = total
	if err := s.recomputeBudget(); err != nil {
		s.budget = prev
		return err
	}
	return nil
}

// SetStudentID records the student ID the operator logged in with.
func (s *Store) SetStudentID(studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return invalid("studentId", "is required")
	}
	s.user.StudentID = studentID
	return nil
}

func (s *Store) replaceExpenses(expenses []models.Expense) error {
	prev := s.expenses
	s.expenses = expenses
	if err := s.recomputeBudget(); err != nil {
		s.expenses = prev
		return err
	}
	return nil
}

// recomputeBudget derives spent and remaining from the expenses.
func (s *Store) recomputeBudget() error {
	spent, err := calculator.TotalUserSpent(&models.Snapshot{User: s.user, Expenses: s.expenses})
	if err != nil {
		return err
	}
	s.budget.Spent = spent
	s.budget.Remaining = s.budget.Total.Sub(spent)
	return nil
}

func (s *Store) personIndex(id string) int {
	for i, p := range s.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			result = append(result, x)
		}
	}
	return result
}
