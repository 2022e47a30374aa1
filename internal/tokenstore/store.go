// Package tokenstore persists small string values, notably the session
// token, across runs of the console.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// TokenKey is the well-known key the session token is stored under.
const TokenKey = "token"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("tokenstore: key not found")

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for backend, rooted at path.
func Open(ctx context.Context, backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path, logger), nil
	case BackendSQLite:
		st, err := NewSQLiteStore(path, logger)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("migrate token store: %w", err)
		}
		return st, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store backend %q", backend)
	}
}
