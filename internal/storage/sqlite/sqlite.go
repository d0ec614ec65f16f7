// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/roomledger/internal/models"
	"github.com/mmynk/roomledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect and
	// serializes writers.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the stored ledger with the snapshot in one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expense_participants", "expenses", "people", "budget", "ledger_user"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	user := snapshot.User
	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledger_user (id, name, student_id, color) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.StudentID, user.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	b := snapshot.Budget
	_, err = tx.ExecContext(ctx,
		"INSERT INTO budget (id, total, spent, remaining) VALUES (1, ?, ?, ?)",
		b.Total.String(), b.Spent.String(), b.Remaining.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	for i, p := range snapshot.Roommates {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (id, position, name, color, is_current_user) VALUES (?, ?, ?, ?, ?)",
			p.ID, i, p.Name, p.Color, p.IsCurrentUser,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i, e := range snapshot.Expenses {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, position, title, amount, category, type, paid_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Title, e.Amount.String(), string(e.Category), string(e.Type), e.Payer,
			e.Date.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		// Insert participants
		for j, personID := range e.Participants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expense_participants (expense_id, position, person_id) VALUES (?, ?, ?)",
				e.ID, j, personID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadSnapshot reads the complete stored ledger.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snapshot := &models.Snapshot{}

	// Get user
	err = tx.QueryRowContext(ctx,
		"SELECT id, name, student_id, color FROM ledger_user LIMIT 1",
	).Scan(&snapshot.User.ID, &snapshot.User.Name, &snapshot.User.StudentID, &snapshot.User.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Get budget
	var total, spent, remaining string
	err = tx.QueryRowContext(ctx,
		"SELECT total, spent, remaining FROM budget WHERE id = 1",
	).Scan(&total, &spent, &remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget missing from snapshot: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	if snapshot.Budget, err = parseBudget(total, spent, remaining); err != nil {
		return nil, err
	}

	if snapshot.Roommates, err = loadPeople(ctx, tx); err != nil {
		return nil, err
	}
	if snapshot.Expenses, err = loadExpenses(ctx, tx); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func parseBudget(total, spent, remaining string) (models.Budget, error) {
	var b models.Budget
	var err error
	if b.Total, err = decimal.NewFromString(total); err != nil {
		return b, fmt.Errorf("failed to parse budget total: %w", err)
	}
	if b.Spent, err = decimal.NewFromString(spent); err != nil {
		return b, fmt.Errorf("failed to parse budget spent: %w", err)
	}
	if b.Remaining, err = decimal.NewFromString(remaining); err != nil {
		return b, fmt.Errorf("failed to parse budget remaining: %w", err)
	}
	return b, nil
}

func loadPeople(ctx context.Context, tx *sql.Tx) ([]models.Person, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, name, color, is_current_user FROM people ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.IsCurrentUser); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

func loadExpenses(ctx context.Context, tx *sql.Tx) ([]models.Expense, error) {
	participants, err := loadParticipants(ctx, tx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, amount, category, type, paid_by, created_at
		 FROM expenses ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		var amount, category, expenseType, createdAt string
		if err := rows.Scan(&e.ID, &e.Title, &amount, &category, &expenseType, &e.Payer, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount of expense %s: %w", e.ID, err)
		}
		if e.Date, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse date of expense %s: %w", e.ID, err)
		}
		e.Category = models.Category(category)
		e.Type = models.ExpenseType(expenseType)
		e.Participants = participants[e.ID]
		if e.Participants == nil {
			e.Participants = []string{}
		}

		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func loadParticipants(ctx context.Context, tx *sql.Tx) (map[string][]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT expense_id, person_id FROM expense_participants ORDER BY expense_id, position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[string][]string)
	for rows.Next() {
		var expenseID, personID string
		if err := rows.Scan(&expenseID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants[expenseID] = append(participants[expenseID], personID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}
