package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mahi3005/data-alchemist/pkg/config"
)

var (
	// ErrNotFound is returned when a run ID does not exist.
	ErrNotFound = errors.New("history: run not found")

	errEmptyID = errors.New("run has no ID")
)

// Storage persists runs.
type Storage interface {
	// Save stores a run. Saving an existing ID replaces it.
	Save(ctx context.Context, run *Run) error

	// Get returns a run or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns matching runs, newest first.
	List(ctx context.Context, q Query) ([]*Run, error)

	// Delete removes one run or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteBefore removes runs started before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// KeepLatest removes all but the n newest runs.
	KeepLatest(ctx context.Context, n int) (int64, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) (int64, error)

	// Ping checks that the backend is usable.
	Ping(ctx context.Context) error

	Close() error
}

// StorageError wraps a backend failure.
type StorageError struct {
	Backend   string // "memory" or "sqlite"
	Operation string // "save", "get", "list", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// Open creates the backend selected by cfg.
func Open(cfg config.HistoryConfig) (Storage, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStorage(), nil
	case "sqlite", "":
		return NewSQLiteStorage(&SQLiteConfig{
			Path:   cfg.SQLitePath,
			Driver: cfg.SQLiteDriver,
		})
	default:
		return nil, fmt.Errorf("history: unknown backend %q", cfg.Backend)
	}
}
