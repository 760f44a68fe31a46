package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"budgetbook/internal/core"
	"budgetbook/internal/mock"
	"budgetbook/internal/store"
)

// Store keeps the profile and its expenses in process memory.
type Store struct {
	mu      sync.RWMutex
	profile core.UserProfile
	items   []core.Expense
	nextID  int64
	closed  bool
	version atomic.Uint64
}

var _ store.Store = (*Store)(nil)

func New(seed store.Seed) *Store {
	s := &Store{profile: seed.Profile}
	s.items = append([]core.Expense(nil), seed.Expenses...)
	mock.SortNewestFirst(s.items)
	for _, e := range s.items {
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s
}

func (s *Store) Expenses(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	return append([]core.Expense(nil), s.items...), nil
}

// Add stores e under the next ID. Among records with the same date the newest
// insert sorts first.
func (s *Store) Add(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.Expense{}, store.ErrClosed
	}
	e.ID = s.nextID
	s.nextID++
	s.items = append([]core.Expense{e}, s.items...)
	mock.SortNewestFirst(s.items)
	s.version.Add(1)
	return e, nil
}

func (s *Store) Merge(_ context.Context, expenses []core.Expense) (int, error) {
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(expenses) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, store.ErrClosed
	}
	merged := make([]core.Expense, 0, len(expenses)+len(s.items))
	for _, e := range expenses {
		e.ID = s.nextID
		s.nextID++
		merged = append(merged, e)
	}
	s.items = append(merged, s.items...)
	mock.SortNewestFirst(s.items)
	s.version.Add(1)
	return len(expenses), nil
}

func (s *Store) Profile(_ context.Context) (core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.UserProfile{}, store.ErrClosed
	}
	return s.profile, nil
}

func (s *Store) UpdateSettings(_ context.Context, set core.Settings) (core.UserProfile, error) {
	if err := set.Validate(); err != nil {
		return core.UserProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.UserProfile{}, store.ErrClosed
	}
	s.profile.Apply(set)
	s.version.Add(1)
	return s.profile, nil
}

func (s *Store) Version() uint64 { return s.version.Load() }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}
