// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/roomledger/internal/models"
)

var (
	// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no ledger snapshot stored")
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
)

// Store defines the interface for ledger persistence.
// The whole snapshot is the unit of persistence: SaveSnapshot replaces
// everything previously stored, atomically.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// LoadSnapshot returns the last saved snapshot, or ErrNoSnapshot.
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)

	// SaveSnapshot replaces the stored snapshot.
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}

// LoadOrDefault loads the stored snapshot, falling back to the default
// snapshot of a fresh ledger.
func LoadOrDefault(ctx context.Context, store Store) (*models.Snapshot, error) {
	snapshot, err := store.LoadSnapshot(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return models.DefaultSnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
