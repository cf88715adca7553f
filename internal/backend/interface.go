package backend

import (
	"context"

	"spendwise/internal/store"
)

// Factory creates the stores that hold one session's state.
type Factory interface {
	// Open returns fresh, empty stores for the given session id.
	Open(ctx context.Context, sessionID string) (store.Stores, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific. The single %s is replaced with the session id.
	SQLiteDSNTemplate string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
