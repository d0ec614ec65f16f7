package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/auth"
	"github.com/mmynk/roomledger/internal/calculator"
	"github.com/mmynk/roomledger/internal/metrics"
	"github.com/mmynk/roomledger/internal/middleware"
	"github.com/mmynk/roomledger/internal/models"
	"github.com/mmynk/roomledger/internal/storage/sqlite"
)

type testServer struct {
	url   string
	store *sqlite.SQLiteStore
}

// setupTestServer creates a test server backed by a temp SQLite database with
// the production interceptor chain.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	ledgerSvc := NewLedgerService(store, WithMetrics(metrics.New()))
	if err := ledgerSvc.Init(context.Background()); err != nil {
		t.Fatalf("failed to init ledger: %v", err)
	}
	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, ledgerSvc, logger)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)
	mux := http.NewServeMux()
	mux.Handle(NewLedgerServiceHandler(ledgerSvc, interceptors))
	mux.Handle(NewAuthServiceHandler(authSvc, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{url: server.URL, store: store}
}

// call performs one unary RPC with an optional bearer token.
func call[Req, Res any](t *testing.T, ts *testServer, procedure, token string, msg *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](http.DefaultClient, ts.url+procedure, connect.WithCodec(Codec()))
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func login(t *testing.T, ts *testServer) string {
	t.Helper()
	resp, err := call[LoginRequest, LoginResponse](t, ts, AuthServiceLoginProcedure, "",
		&LoginRequest{StudentID: "S123", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return resp.Token
}

func addPerson(t *testing.T, ts *testServer, token, name string) models.Person {
	t.Helper()
	resp, err := call[AddPersonRequest, AddPersonResponse](t, ts, LedgerServiceAddPersonProcedure, token,
		&AddPersonRequest{Name: name, Color: "hsl(10, 50%, 50%)"})
	if err != nil {
		t.Fatalf("AddPerson failed: %v", err)
	}
	return resp.Person
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%v)", want, connectErr.Code(), err)
	}
}

func TestLedgerService_RequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	_, err := call[GetDashboardRequest, GetDashboardResponse](t, ts, LedgerServiceGetDashboardProcedure, "", &GetDashboardRequest{})
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = call[GetDashboardRequest, GetDashboardResponse](t, ts, LedgerServiceGetDashboardProcedure, "garbage", &GetDashboardRequest{})
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestAuthService_LoginFlow(t *testing.T) {
	ts := setupTestServer(t)

	first, err := call[LoginRequest, LoginResponse](t, ts, AuthServiceLoginProcedure, "",
		&LoginRequest{StudentID: "S123", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !first.Enrolled {
		t.Error("expected first login to enrol")
	}
	if first.User.StudentID != "S123" {
		t.Errorf("expected student ID S123 on user, got %q", first.User.StudentID)
	}

	_, err = call[LoginRequest, LoginResponse](t, ts, AuthServiceLoginProcedure, "",
		&LoginRequest{StudentID: "S123", Password: "wrong password"})
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = call[LoginRequest, LoginResponse](t, ts, AuthServiceLoginProcedure, "",
		&LoginRequest{StudentID: "S456", Password: "short"})
	assertCode(t, err, connect.CodeInvalidArgument)

	second, err := call[LoginRequest, LoginResponse](t, ts, AuthServiceLoginProcedure, "",
		&LoginRequest{StudentID: "S123", Password: "correct horse"})
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if second.Enrolled {
		t.Error("expected second login to reuse the credential")
	}

	who, err := call[WhoAmIRequest, WhoAmIResponse](t, ts, AuthServiceWhoAmIProcedure, second.Token, &WhoAmIRequest{})
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if who.User.ID != models.DefaultSnapshot().User.ID || who.User.StudentID != "S123" {
		t.Errorf("unexpected user: %+v", who.User)
	}

	if _, err := call[LogoutRequest, LogoutResponse](t, ts, AuthServiceLogoutProcedure, second.Token, &LogoutRequest{}); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	_, err = call[WhoAmIRequest, WhoAmIResponse](t, ts, AuthServiceWhoAmIProcedure, second.Token, &WhoAmIRequest{})
	assertCode(t, err, connect.CodeUnauthenticated)

	// Other sessions survive.
	if _, err := call[WhoAmIRequest, WhoAmIResponse](t, ts, AuthServiceWhoAmIProcedure, first.Token, &WhoAmIRequest{}); err != nil {
		t.Errorf("expected first token to stay valid, got %v", err)
	}
}

func TestLedgerService_SharedExpenseSettlements(t *testing.T) {
	ts := setupTestServer(t)
	token := login(t, ts)
	me := models.DefaultSnapshot().User.ID

	a := addPerson(t, ts, token, "Asha")
	b := addPerson(t, ts, token, "Bilal")

	added, err := call[AddExpenseRequest, AddExpenseResponse](t, ts, LedgerServiceAddExpenseProcedure, token, &AddExpenseRequest{
		Title:      "Groceries",
		Amount:     decimal.NewFromInt(300),
		Category:   models.CategoryGroceries,
		Type:       models.ExpenseTypeShared,
		PaidBy:     a.ID,
		SharedWith: []string{a.ID, b.ID, me},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if added.Expense.ID == "" {
		t.Error("expected expense ID to be generated")
	}
	if !added.Budget.Spent.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected spent 100, got %s", added.Budget.Spent)
	}

	settlements, err := call[GetSettlementsRequest, GetSettlementsResponse](t, ts, LedgerServiceGetSettlementsProcedure, token, &GetSettlementsRequest{})
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}
	if len(settlements.Settlements) != 2 {
		t.Fatalf("expected 2 settlements, got %d", len(settlements.Settlements))
	}
	want := map[string]struct {
		amount    int64
		direction calculator.Direction
	}{
		a.ID: {200, calculator.DirectionYouOweThem},
		b.ID: {100, calculator.DirectionTheyOweYou},
	}
	for _, s := range settlements.Settlements {
		w, ok := want[s.Person.ID]
		if !ok {
			t.Errorf("unexpected settlement with %s", s.Person.ID)
			continue
		}
		if !s.Amount.Equal(decimal.NewFromInt(w.amount)) || s.Direction != w.direction {
			t.Errorf("settlement with %s = %s %s, want %d %s", s.Person.Name, s.Amount, s.Direction, w.amount, w.direction)
		}
	}
	if !settlements.NetBalance.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("expected net balance -100, got %s", settlements.NetBalance)
	}

	balances, err := call[GetGroupBalancesRequest, GetGroupBalancesResponse](t, ts, LedgerServiceGetGroupBalancesProcedure, token, &GetGroupBalancesRequest{})
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if len(balances.Balances) != 3 {
		t.Errorf("expected 3 member balances, got %d", len(balances.Balances))
	}
	total := decimal.Zero
	for _, tr := range balances.Transfers {
		if tr.To != a.ID {
			t.Errorf("expected every transfer to go to %s, got %+v", a.ID, tr)
		}
		total = total.Add(tr.Amount)
	}
	if !total.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected transfers to total 200, got %s", total)
	}

	settled, err := call[SettleWithRequest, SettleWithResponse](t, ts, LedgerServiceSettleWithProcedure, token, &SettleWithRequest{PersonID: a.ID})
	if err != nil {
		t.Fatalf("SettleWith failed: %v", err)
	}
	if settled.Removed != 1 {
		t.Errorf("expected 1 expense removed, got %d", settled.Removed)
	}

	list, err := call[ListExpensesRequest, ListExpensesResponse](t, ts, LedgerServiceListExpensesProcedure, token, &ListExpensesRequest{})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Expenses) != 0 {
		t.Errorf("expected no expenses left, got %d", len(list.Expenses))
	}
}

func TestLedgerService_Dashboard(t *testing.T) {
	ts := setupTestServer(t)
	token := login(t, ts)
	me := models.DefaultSnapshot().User.ID

	if _, err := call[UpdateBudgetRequest, UpdateBudgetResponse](t, ts, LedgerServiceUpdateBudgetProcedure, token,
		&UpdateBudgetRequest{Total: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("UpdateBudget failed: %v", err)
	}

	for i, amount := range []int64{300, 300, 50, 10, 10, 10} {
		category := models.CategoryFood
		if i == 2 {
			category = models.CategoryTransport
		}
		_, err := call[AddExpenseRequest, AddExpenseResponse](t, ts, LedgerServiceAddExpenseProcedure, token, &AddExpenseRequest{
			Title:    "Expense",
			Amount:   decimal.NewFromInt(amount),
			Category: category,
			Type:     models.ExpenseTypePersonal,
			PaidBy:   me,
		})
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	dash, err := call[GetDashboardRequest, GetDashboardResponse](t, ts, LedgerServiceGetDashboardProcedure, token, &GetDashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if !dash.Budget.Spent.Equal(decimal.NewFromInt(680)) {
		t.Errorf("expected spent 680, got %s", dash.Budget.Spent)
	}
	if dash.Tier != calculator.TierWatchSpending {
		t.Errorf("expected tier %s, got %s", calculator.TierWatchSpending, dash.Tier)
	}
	if dash.ExpenseCount != 6 || len(dash.RecentExpenses) != recentExpenseCount {
		t.Errorf("expected 6 expenses with %d recent, got %d and %d", recentExpenseCount, dash.ExpenseCount, len(dash.RecentExpenses))
	}
	if len(dash.Categories) != 2 || dash.Categories[0].Category != models.CategoryFood {
		t.Errorf("unexpected categories: %+v", dash.Categories)
	}

	filtered, err := call[ListExpensesRequest, ListExpensesResponse](t, ts, LedgerServiceListExpensesProcedure, token,
		&ListExpensesRequest{Category: models.CategoryTransport})
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(filtered.Expenses) != 1 {
		t.Errorf("expected 1 transport expense, got %d", len(filtered.Expenses))
	}
}

func TestLedgerService_ErrorCodes(t *testing.T) {
	ts := setupTestServer(t)
	token := login(t, ts)
	me := models.DefaultSnapshot().User.ID

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "zero amount",
			call: func() error {
				_, err := call[AddExpenseRequest, AddExpenseResponse](t, ts, LedgerServiceAddExpenseProcedure, token, &AddExpenseRequest{
					Title: "Nothing", Amount: decimal.Zero, Category: models.CategoryOther,
					Type: models.ExpenseTypePersonal, PaidBy: me,
				})
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown category",
			call: func() error {
				_, err := call[AddExpenseRequest, AddExpenseResponse](t, ts, LedgerServiceAddExpenseProcedure, token, &AddExpenseRequest{
					Title: "Books", Amount: decimal.NewFromInt(5), Category: "Books",
					Type: models.ExpenseTypePersonal, PaidBy: me,
				})
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "negative budget",
			call: func() error {
				_, err := call[UpdateBudgetRequest, UpdateBudgetResponse](t, ts, LedgerServiceUpdateBudgetProcedure, token,
					&UpdateBudgetRequest{Total: decimal.NewFromInt(-1)})
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "delete current user",
			call: func() error {
				_, err := call[DeletePersonRequest, DeletePersonResponse](t, ts, LedgerServiceDeletePersonProcedure, token,
					&DeletePersonRequest{ID: me})
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "settle with current user",
			call: func() error {
				_, err := call[SettleWithRequest, SettleWithResponse](t, ts, LedgerServiceSettleWithProcedure, token,
					&SettleWithRequest{PersonID: me})
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.call(), tt.want)
		})
	}

	// Failed mutations leave the ledger untouched.
	snap, err := call[GetSnapshotRequest, GetSnapshotResponse](t, ts, LedgerServiceGetSnapshotProcedure, token, &GetSnapshotRequest{})
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(snap.Snapshot.Expenses) != 0 || len(snap.Snapshot.Roommates) != 1 {
		t.Errorf("expected untouched ledger, got %+v", snap.Snapshot)
	}
	if !snap.Snapshot.Budget.Total.Equal(models.DefaultBudgetTotal) {
		t.Errorf("expected default budget, got %s", snap.Snapshot.Budget.Total)
	}
}

func TestLedgerService_DeletesPersist(t *testing.T) {
	ts := setupTestServer(t)
	token := login(t, ts)
	me := models.DefaultSnapshot().User.ID
	a := addPerson(t, ts, token, "Asha")

	added, err := call[AddExpenseRequest, AddExpenseResponse](t, ts, LedgerServiceAddExpenseProcedure, token, &AddExpenseRequest{
		Title: "Rent", Amount: decimal.NewFromInt(400), Category: models.CategoryUtilities,
		Type: models.ExpenseTypeShared, PaidBy: me, SharedWith: []string{me, a.ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// Unknown IDs are ignored.
	if _, err := call[DeleteExpenseRequest, DeleteExpenseResponse](t, ts, LedgerServiceDeleteExpenseProcedure, token,
		&DeleteExpenseRequest{ID: "missing"}); err != nil {
		t.Fatalf("DeleteExpense of unknown ID failed: %v", err)
	}

	if _, err := call[DeletePersonRequest, DeletePersonResponse](t, ts, LedgerServiceDeletePersonProcedure, token,
		&DeletePersonRequest{ID: a.ID}); err != nil {
		t.Fatalf("DeletePerson failed: %v", err)
	}

	stored, err := ts.store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(stored.Roommates) != 1 {
		t.Errorf("expected only the current user stored, got %d roommates", len(stored.Roommates))
	}
	if len(stored.Expenses) != 1 || stored.Expenses[0].ID != added.Expense.ID {
		t.Fatalf("expected the rent expense to survive, got %+v", stored.Expenses)
	}
	if got := stored.Expenses[0].Participants; len(got) != 1 || got[0] != me {
		t.Errorf("expected participants [%s], got %v", me, got)
	}
	if !stored.Budget.Spent.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected spent 400 after cascade, got %s", stored.Budget.Spent)
	}
	if stored.User.StudentID != "S123" {
		t.Errorf("expected login to be persisted, got %q", stored.User.StudentID)
	}
}
