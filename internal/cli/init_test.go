package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"budgetbook/internal/config"
)

func TestSetupLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "component=app") {
		t.Fatalf("component missing: %s", out)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("BUDGETBOOK_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUDGETBOOK_TEST_VALUE", "")
	os.Unsetenv("BUDGETBOOK_TEST_VALUE")

	LoadEnvFile(path)
	if got := os.Getenv("BUDGETBOOK_TEST_VALUE"); got != "from-file" {
		t.Fatalf("got %q", got)
	}

	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "sqlite")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" || cfg.DataBackend != "sqlite" {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv("DATA_BACKEND", "sheets")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInitBackendSeedsStore(t *testing.T) {
	today := time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC)
	for _, kind := range []string{"memory", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			cfg := config.Load()
			cfg.DataBackend = kind
			cfg.SQLiteDSN = "file:cli_" + kind + "?mode=memory&cache=shared"
			cfg.MockSeed = 7
			cfg.MockExpenses = 12

			logger := SetupLogger("error", &bytes.Buffer{})
			res, err := InitBackend(context.Background(), logger, cfg, DemoSeed(cfg, today))
			if err != nil {
				t.Fatal(err)
			}
			defer res.Cleanup()

			items, err := res.Store.Expenses(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != 12 {
				t.Fatalf("got %d expenses, want 12", len(items))
			}
			p, err := res.Store.Profile(context.Background())
			if err != nil || p.Name != "Ananya Singh" {
				t.Fatalf("profile = %+v, %v", p, err)
			}
		})
	}
}

func TestSignalContextCancelsWithParent(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SignalContext(parent, SetupLogger("error", &bytes.Buffer{}))
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
