package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/log"
)

func TestIsCSV(t *testing.T) {
	assert.True(t, isCSV("/tmp/expenses_1-5-2025.csv"))
	assert.True(t, isCSV("DATA.CSV"))
	assert.False(t, isCSV("notes.txt"))
	assert.False(t, isCSV("csv"))
}

func TestWatcherHandlesDroppedCSV(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	handler := func(_ context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, filepath.Base(path))
		return errors.New("import already in progress")
	}

	w := New(dir, handler, log.New(log.Config{Output: io.Discard}))
	w.settle = 20 * time.Millisecond
	w.tick = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.Started()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.csv"), []byte("id\n1"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 3*time.Second, 10*time.Millisecond)

	// create and write events for one file collapse into a single call
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"drop.csv"}, seen)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), func(context.Context, string) error { return nil }, log.New(log.Config{Output: io.Discard}))
	assert.Error(t, w.Run(context.Background()))
}
