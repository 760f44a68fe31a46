package backend

import (
	"context"
	"errors"
	"testing"

	"budgetbook/internal/config"
	"budgetbook/internal/storage"
	"budgetbook/internal/store/storetest"
)

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDSN: "file:factorytest?mode=memory&cache=shared"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.cfg, storetest.Seed())
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			defer res.Cleanup()

			got, err := res.Store.Expenses(ctx)
			if err != nil || len(got) != 3 {
				t.Fatalf("expected 3 seeded expenses, got %d err=%v", len(got), err)
			}
		})
	}
}

func TestCreateBackendRejectsBadConfig(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	if _, err := f.CreateBackend(ctx, Config{Type: "sheets"}, storetest.Seed()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	_, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDSN: "budget.db"}, storetest.Seed())
	if !errors.Is(err, storage.ErrPersistentDSN) {
		t.Fatalf("expected ErrPersistentDSN, got %v", err)
	}
	if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}, storetest.Seed()); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDSN: storage.DefaultDSN})
	if err != nil {
		t.Fatalf("from app config: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDSN != storage.DefaultDSN {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for sheets backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 2 {
		t.Fatalf("unexpected backend types: %v", got)
	}
}
