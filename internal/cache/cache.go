// Package cache holds computed aggregates between store mutations.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Key builds the aggregate cache key. Months are bucketed in ref's location,
// so the location is part of the key. Any store mutation bumps version, so
// stale entries are never read again and simply age out.
func Key(endpoint string, ref time.Time, version uint64) string {
	return fmt.Sprintf("%s|%s|%s|%d", endpoint, ref.Format("2006-01-02Z07:00"), ref.Location(), version)
}

// Manager sweeps expired entries from its caches on an interval.
type Manager struct {
	caches []Cleaner
	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// Sweep cleans every registered cache once and returns the number of removed
// entries.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Cache sweep", "removed", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
