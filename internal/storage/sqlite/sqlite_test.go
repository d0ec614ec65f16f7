package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomledger/internal/models"
	"github.com/mmynk/roomledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot() *models.Snapshot {
	snap := models.DefaultSnapshot()
	snap.User.StudentID = "S123"
	snap.Roommates = append(snap.Roommates,
		models.Person{ID: "p-a", Name: "Asha", Color: "hsl(10, 50%, 50%)"},
		models.Person{ID: "p-b", Name: "Bilal", Color: "hsl(200, 50%, 50%)"},
	)
	date := time.Date(2026, 3, 1, 12, 30, 0, 123, time.UTC)
	snap.Expenses = []models.Expense{
		{
			ID: "e-2", Title: "Groceries", Amount: decimal.RequireFromString("300.50"),
			Category: models.CategoryFood, Type: models.ExpenseTypeShared,
			Payer: "p-a", Participants: []string{"p-a", "p-b", snap.User.ID}, Date: date,
		},
		{
			ID: "e-1", Title: "Notebook", Amount: decimal.NewFromInt(80),
			Category: models.CategoryOther, Type: models.ExpenseTypePersonal,
			Payer: snap.User.ID, Participants: []string{snap.User.ID}, Date: date.Add(-time.Hour),
		},
	}
	snap.Budget.Spent = decimal.RequireFromString("180.1666666666666667")
	snap.Budget.Remaining = snap.Budget.Total.Sub(snap.Budget.Spent)
	return snap
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadSnapshot on empty database", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.LoadSnapshot(ctx)
		if !errors.Is(err, storage.ErrNoSnapshot) {
			t.Fatalf("Expected ErrNoSnapshot, got %v", err)
		}

		snap, err := storage.LoadOrDefault(ctx, store)
		if err != nil {
			t.Fatalf("LoadOrDefault failed: %v", err)
		}
		if snap.User.ID != models.DefaultSnapshot().User.ID {
			t.Errorf("Expected default user, got %q", snap.User.ID)
		}
	})

	t.Run("SaveSnapshot then LoadSnapshot round trips", func(t *testing.T) {
		store := newTestStore(t)
		original := sampleSnapshot()
		if err := store.SaveSnapshot(ctx, original); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}

		got, err := store.LoadSnapshot(ctx)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}

		if got.User != original.User {
			t.Errorf("User = %+v, want %+v", got.User, original.User)
		}
		if !got.Budget.Total.Equal(original.Budget.Total) || !got.Budget.Spent.Equal(original.Budget.Spent) ||
			!got.Budget.Remaining.Equal(original.Budget.Remaining) {
			t.Errorf("Budget = %+v, want %+v", got.Budget, original.Budget)
		}
		if len(got.Roommates) != len(original.Roommates) {
			t.Fatalf("Expected %d roommates, got %d", len(original.Roommates), len(got.Roommates))
		}
		for i := range original.Roommates {
			if got.Roommates[i] != original.Roommates[i] {
				t.Errorf("Roommate %d = %+v, want %+v", i, got.Roommates[i], original.Roommates[i])
			}
		}
		if len(got.Expenses) != len(original.Expenses) {
			t.Fatalf("Expected %d expenses, got %d", len(original.Expenses), len(got.Expenses))
		}
		for i, want := range original.Expenses {
			e := got.Expenses[i]
			if e.ID != want.ID || e.Title != want.Title || e.Category != want.Category ||
				e.Type != want.Type || e.Payer != want.Payer {
				t.Errorf("Expense %d = %+v, want %+v", i, e, want)
			}
			if !e.Amount.Equal(want.Amount) {
				t.Errorf("Expense %d amount = %s, want %s", i, e.Amount, want.Amount)
			}
			if !e.Date.Equal(want.Date) {
				t.Errorf("Expense %d date = %v, want %v", i, e.Date, want.Date)
			}
			if len(e.Participants) != len(want.Participants) {
				t.Fatalf("Expense %d participants = %v, want %v", i, e.Participants, want.Participants)
			}
			for j := range want.Participants {
				if e.Participants[j] != want.Participants[j] {
					t.Errorf("Expense %d participants = %v, want %v", i, e.Participants, want.Participants)
				}
			}
		}
	})

	t.Run("SaveSnapshot replaces previous state", func(t *testing.T) {
		store := newTestStore(t)
		if err := store.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		if err := store.SaveSnapshot(ctx, models.DefaultSnapshot()); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}

		got, err := store.LoadSnapshot(ctx)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(got.Expenses) != 0 {
			t.Errorf("Expected no expenses, got %d", len(got.Expenses))
		}
		if len(got.Roommates) != 1 {
			t.Errorf("Expected only the current user, got %d roommates", len(got.Roommates))
		}
		if got.User.StudentID != "" {
			t.Errorf("Expected empty student ID, got %q", got.User.StudentID)
		}
	})

	t.Run("Snapshot survives reopening the database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "ledger.db")
		store, err := New(dbPath)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}
		if err := store.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		store.Close()

		reopened, err := New(dbPath)
		if err != nil {
			t.Fatalf("Failed to reopen store: %v", err)
		}
		defer reopened.Close()

		got, err := reopened.LoadSnapshot(ctx)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(got.Expenses) != 2 {
			t.Errorf("Expected 2 expenses, got %d", len(got.Expenses))
		}
	})
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("unknown student", func(t *testing.T) {
		_, err := store.GetCredential(ctx, "nobody")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("create and get", func(t *testing.T) {
		if err := store.CreateCredential(ctx, "S123", "hash-1"); err != nil {
			t.Fatalf("CreateCredential failed: %v", err)
		}
		hash, err := store.GetCredential(ctx, "S123")
		if err != nil {
			t.Fatalf("GetCredential failed: %v", err)
		}
		if hash != "hash-1" {
			t.Errorf("Expected hash-1, got %q", hash)
		}
	})

	t.Run("duplicate enrolment fails", func(t *testing.T) {
		if err := store.CreateCredential(ctx, "S123", "hash-2"); err == nil {
			t.Fatal("Expected error for duplicate student ID")
		}
	})
}
