package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/roomledger/internal/calculator"
	"github.com/mmynk/roomledger/internal/ledger"
	"github.com/mmynk/roomledger/internal/metrics"
	"github.com/mmynk/roomledger/internal/models"
	"github.com/mmynk/roomledger/internal/storage"
)

// recentExpenseCount is the number of expenses shown on the dashboard.
const recentExpenseCount = 5

// LedgerService implements the Connect LedgerService.
// Every call loads the stored snapshot into a fresh ledger.Store, runs, and
// saves the result when it mutated anything. Calls are serialized; writers in
// other processes sharing the database are last-writer-wins.
type LedgerService struct {
	mu      sync.Mutex
	store   storage.Store
	metrics *metrics.Metrics
	opts    []ledger.Option
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithMetrics makes the service publish ledger gauges after each save.
func WithMetrics(m *metrics.Metrics) LedgerOption {
	return func(s *LedgerService) { s.metrics = m }
}

// WithLedgerOptions passes options to every ledger.Store the service builds.
func WithLedgerOptions(opts ...ledger.Option) LedgerOption {
	return func(s *LedgerService) { s.opts = append(s.opts, opts...) }
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init persists the default snapshot when storage is empty and primes the
// metrics.
func (s *LedgerService) Init(ctx context.Context) error {
	return s.mutate(ctx, func(*ledger.Store) error { return nil })
}

// view runs fn against the stored ledger without saving.
func (s *LedgerService) view(ctx context.Context, fn func(*ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(l)
}

// mutate runs fn against the stored ledger and saves the result if fn succeeds.
func (s *LedgerService) mutate(ctx context.Context, fn func(*ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}

	snapshot := l.Snapshot()
	err = s.store.SaveSnapshot(ctx, snapshot)
	if s.metrics != nil {
		s.metrics.ObserveSave(err)
		if err == nil {
			s.metrics.SetLedger(snapshot)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *LedgerService) load(ctx context.Context) (*ledger.Store, error) {
	snapshot, err := storage.LoadOrDefault(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return ledger.New(snapshot, s.opts...)
}

// GetDashboard returns the budget overview of the current user.
func (s *LedgerService) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	slog.Info("GetDashboard request received")

	var resp GetDashboardResponse
	err := s.view(ctx, func(l *ledger.Store) error {
		dashboard, err := calculator.BuildDashboard(l.Snapshot())
		if err != nil {
			return err
		}

		resp = GetDashboardResponse{
			Budget:       l.Budget(),
			Percentage:   dashboard.Status.Percentage,
			Tier:         dashboard.Status.Tier,
			Message:      dashboard.Status.Tier.Message(),
			ExpenseCount: dashboard.ExpenseCount,
			Categories:   make([]CategorySpend, 0, len(dashboard.Categories)),
		}
		for _, c := range dashboard.Categories {
			resp.Categories = append(resp.Categories, CategorySpend{Category: c.Category, Amount: c.Amount})
		}

		resp.RecentExpenses = l.Expenses(ledger.ExpenseFilter{})
		if len(resp.RecentExpenses) > recentExpenseCount {
			resp.RecentExpenses = resp.RecentExpenses[:recentExpenseCount]
		}
		return nil
	})
	if err != nil {
		slog.Error("GetDashboard failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetDashboard successful", "tier", resp.Tier, "expense_count", resp.ExpenseCount)
	return connect.NewResponse(&resp), nil
}

// ListExpenses lists the expenses, most recent first, optionally filtered.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "category", req.Msg.Category, "type", req.Msg.Type)

	var expenses []models.Expense
	err := s.view(ctx, func(l *ledger.Store) error {
		expenses = l.Expenses(ledger.ExpenseFilter{Category: req.Msg.Category, Type: req.Msg.Type})
		return nil
	})
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, toConnectError(err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	slog.Info("ListExpenses successful", "count", len(expenses))
	return connect.NewResponse(&ListExpensesResponse{Expenses: expenses}), nil
}

// AddExpense records a new expense.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"title", req.Msg.Title,
		"amount", req.Msg.Amount,
		"type", req.Msg.Type,
		"participants_count", len(req.Msg.SharedWith),
	)

	var resp AddExpenseResponse
	err := s.mutate(ctx, func(l *ledger.Store) error {
		expense, err := l.AddExpense(ledger.ExpenseDraft{
			Title:        req.Msg.Title,
			Amount:       req.Msg.Amount,
			Category:     req.Msg.Category,
			Type:         req.Msg.Type,
			Payer:        req.Msg.PaidBy,
			Participants: req.Msg.SharedWith,
		})
		if err != nil {
			return err
		}
		resp = AddExpenseResponse{Expense: expense, Budget: l.Budget()}
		return nil
	})
	if err != nil {
		slog.Warn("AddExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense added", "expense_id", resp.Expense.ID)
	return connect.NewResponse(&resp), nil
}

// DeleteExpense removes an expense. Unknown IDs succeed.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ID)

	var resp DeleteExpenseResponse
	err := s.mutate(ctx, func(l *ledger.Store) error {
		if err := l.DeleteExpense(req.Msg.ID); err != nil {
			return err
		}
		resp.Budget = l.Budget()
		return nil
	})
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("DeleteExpense successful", "expense_id", req.Msg.ID)
	return connect.NewResponse(&resp), nil
}

// ListPeople lists the roommates, current user included.
func (s *LedgerService) ListPeople(ctx context.Context, req *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error) {
	slog.Info("ListPeople request received")

	var people []models.Person
	err := s.view(ctx, func(l *ledger.Store) error {
		people = l.People()
		return nil
	})
	if err != nil {
		slog.Error("ListPeople failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListPeople successful", "count", len(people))
	return connect.NewResponse(&ListPeopleResponse{People: people}), nil
}

// AddPerson adds a roommate.
func (s *LedgerService) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[AddPersonResponse], error) {
	slog.Info("AddPerson request received", "name", req.Msg.Name)

	var person models.Person
	err := s.mutate(ctx, func(l *ledger.Store) error {
		var err error
		person, err = l.AddPerson(ledger.PersonDraft{Name: req.Msg.Name, Color: req.Msg.Color})
		return err
	})
	if err != nil {
		slog.Warn("AddPerson failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Person added", "person_id", person.ID)
	return connect.NewResponse(&AddPersonResponse{Person: person}), nil
}

// DeletePerson removes a roommate together with the expenses they paid.
func (s *LedgerService) DeletePerson(ctx context.Context, req *connect.Request[DeletePersonRequest]) (*connect.Response[DeletePersonResponse], error) {
	slog.Info("DeletePerson request received", "person_id", req.Msg.ID)

	err := s.mutate(ctx, func(l *ledger.Store) error {
		return l.DeletePerson(req.Msg.ID)
	})
	if err != nil {
		slog.Warn("DeletePerson failed", "person_id", req.Msg.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("DeletePerson successful", "person_id", req.Msg.ID)
	return connect.NewResponse(&DeletePersonResponse{}), nil
}

// UpdateBudget sets the monthly budget of the current user.
func (s *LedgerService) UpdateBudget(ctx context.Context, req *connect.Request[UpdateBudgetRequest]) (*connect.Response[UpdateBudgetResponse], error) {
	slog.Info("UpdateBudget request received", "total", req.Msg.Total)

	var budget models.Budget
	err := s.mutate(ctx, func(l *ledger.Store) error {
		if err := l.UpdateBudgetTotal(req.Msg.Total); err != nil {
			return err
		}
		budget = l.Budget()
		return nil
	})
	if err != nil {
		slog.Warn("UpdateBudget failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("UpdateBudget successful", "total", budget.Total, "remaining", budget.Remaining)
	return connect.NewResponse(&UpdateBudgetResponse{Budget: budget}), nil
}

// GetSettlements returns who owes the current user and whom they owe.
func (s *LedgerService) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	slog.Info("GetSettlements request received")

	var summary calculator.Summary
	err := s.view(ctx, func(l *ledger.Store) error {
		var err error
		summary, err = calculator.Summarize(l.Snapshot())
		return err
	})
	if err != nil {
		slog.Error("GetSettlements failed", "error", err)
		return nil, toConnectError(err)
	}

	resp := &GetSettlementsResponse{
		Settlements:    make([]SettlementView, 0, len(summary.Settlements)),
		NetBalance:     summary.NetBalance,
		TotalOwedToYou: summary.TotalOwedToYou,
		TotalYouOwe:    summary.TotalYouOwe,
		OwedToYouCount: summary.OwedToYouCount,
		YouOweCount:    summary.YouOweCount,
	}
	for _, st := range summary.Settlements {
		resp.Settlements = append(resp.Settlements, SettlementView{
			Person:    st.Person,
			Amount:    st.Amount,
			Direction: st.Direction,
		})
	}

	slog.Info("GetSettlements successful", "count", len(resp.Settlements), "net_balance", resp.NetBalance)
	return connect.NewResponse(resp), nil
}

// SettleWith clears the shared expenses between the current user and a roommate.
func (s *LedgerService) SettleWith(ctx context.Context, req *connect.Request[SettleWithRequest]) (*connect.Response[SettleWithResponse], error) {
	slog.Info("SettleWith request received", "person_id", req.Msg.PersonID)

	var removed int
	err := s.mutate(ctx, func(l *ledger.Store) error {
		var err error
		removed, err = l.SettleWith(req.Msg.PersonID)
		return err
	})
	if err != nil {
		slog.Warn("SettleWith failed", "person_id", req.Msg.PersonID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("SettleWith successful", "person_id", req.Msg.PersonID, "removed", removed)
	return connect.NewResponse(&SettleWithResponse{Removed: removed}), nil
}

// GetGroupBalances returns every member's balance over shared expenses plus
// the transfers that would clear them.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received")

	resp := &GetGroupBalancesResponse{}
	err := s.view(ctx, func(l *ledger.Store) error {
		balances, err := calculator.MemberBalances(l.Snapshot().Expenses)
		if err != nil {
			return err
		}

		resp.Balances = make([]MemberBalanceView, 0, len(balances))
		for _, b := range balances {
			view := MemberBalanceView{
				PersonID:  b.PersonID,
				TotalPaid: b.TotalPaid,
				TotalOwed: b.TotalOwed,
				Net:       b.Net,
			}
			if p, ok := l.Person(b.PersonID); ok {
				view.Name = p.Name
			}
			resp.Balances = append(resp.Balances, view)
		}

		edges := calculator.SuggestTransfers(balances)
		resp.Transfers = make([]TransferView, 0, len(edges))
		for _, e := range edges {
			resp.Transfers = append(resp.Transfers, TransferView{From: e.From, To: e.To, Amount: e.Amount})
		}
		return nil
	})
	if err != nil {
		slog.Error("GetGroupBalances failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroupBalances successful", "members", len(resp.Balances), "transfers", len(resp.Transfers))
	return connect.NewResponse(resp), nil
}

// GetSnapshot returns the full ledger state.
func (s *LedgerService) GetSnapshot(ctx context.Context, req *connect.Request[GetSnapshotRequest]) (*connect.Response[GetSnapshotResponse], error) {
	slog.Info("GetSnapshot request received")

	var snapshot *models.Snapshot
	err := s.view(ctx, func(l *ledger.Store) error {
		snapshot = l.Snapshot()
		return nil
	})
	if err != nil {
		slog.Error("GetSnapshot failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetSnapshotResponse{Snapshot: snapshot}), nil
}
