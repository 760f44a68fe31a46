package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetbook/internal/storage"
	"budgetbook/internal/store"
	"budgetbook/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config, seed store.Seed) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config, seed)
	case MemoryBackend:
		return f.createMemoryBackend(seed)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config, seed store.Seed) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(ctx, config.SQLiteDSN, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"dsn", config.SQLiteDSN,
		"expenses", len(seed.Expenses))

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(seed store.Seed) (*BackendResult, error) {
	s := memory.New(seed)

	f.logger.Info("Initialized memory backend", "expenses", len(seed.Expenses))

	return &BackendResult{
		Store:   s,
		Cleanup: s.Close,
	}, nil
}
