// Package watch imports CSV files dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"budgetbook/internal/log"
)

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Watcher waits for *.csv files in a directory and hands each one to a
// handler once it has stopped changing.
type Watcher struct {
	dir     string
	handle  Handler
	logger  *log.Logger
	settle  time.Duration
	tick    time.Duration
	started chan struct{}
}

func New(dir string, handle Handler, logger *log.Logger) *Watcher {
	return &Watcher{
		dir:     dir,
		handle:  handle,
		logger:  logger.WithComponent(log.ComponentWatcher),
		settle:  300 * time.Millisecond,
		tick:    100 * time.Millisecond,
		started: make(chan struct{}),
	}
}

// Started is closed once the directory is being watched.
func (w *Watcher) Started() <-chan struct{} { return w.started }

// Run watches until ctx is cancelled. Files are handled one at a time in the
// order they settle.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching import directory", "dir", w.dir)
	close(w.started)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isCSV(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", log.FieldError, err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				if err := w.handle(ctx, path); err != nil {
					w.logger.Warn("Dropped file not imported", log.FieldFile, path, log.FieldError, err)
				}
			}
		}
	}
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
