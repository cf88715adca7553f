package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/store"
	"spendwise/internal/store/memory"
	"spendwise/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	config Config
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(config Config, logger *slog.Logger) (*DefaultFactory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		config: config,
		logger: logger,
	}, nil
}

// Open implements Factory.Open
func (f *DefaultFactory) Open(ctx context.Context, sessionID string) (store.Stores, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	switch f.config.Type {
	case SQLiteBackend:
		return f.openSQLite(ctx, sessionID)
	case MemoryBackend:
		f.logger.DebugContext(ctx, "Opened memory stores", "session_id", sessionID)
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", f.config.Type)
	}
}

func (f *DefaultFactory) openSQLite(ctx context.Context, sessionID string) (store.Stores, error) {
	dsn := fmt.Sprintf(f.config.SQLiteDSNTemplate, sessionID)
	repo, err := sqlite.NewRepository(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite stores: %w", err)
	}

	f.logger.DebugContext(ctx, "Opened SQLite stores", "session_id", sessionID)
	return repo, nil
}
