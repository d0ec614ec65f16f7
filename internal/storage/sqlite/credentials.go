package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/roomledger/internal/storage"
)

// GetCredential returns the password hash enrolled for a student ID.
func (s *SQLiteStore) GetCredential(ctx context.Context, studentID string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT password_hash FROM credentials WHERE student_id = ?",
		studentID,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return hash, nil
}

// CreateCredential enrols a password hash for a student ID.
func (s *SQLiteStore) CreateCredential(ctx context.Context, studentID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO credentials (student_id, password_hash, created_at) VALUES (?, ?, ?)",
		studentID, passwordHash, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}
