// Package store defines the ports the services use to reach expense and
// profile state, independent of the backend holding it.
package store

import (
	"context"
	"errors"

	"budgetbook/internal/core"
)

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store closed")

type (
	// ExpenseReader returns a snapshot of the collection sorted newest first.
	// The caller owns the returned slice.
	ExpenseReader interface {
		Expenses(ctx context.Context) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		// Add assigns the next free ID and inserts e.
		Add(ctx context.Context, e core.Expense) (core.Expense, error)
		// Merge validates every record, reassigns IDs and inserts them all.
		// Nothing is inserted if any record is invalid.
		Merge(ctx context.Context, expenses []core.Expense) (int, error)
	}

	ProfileStore interface {
		Profile(ctx context.Context) (core.UserProfile, error)
		UpdateSettings(ctx context.Context, s core.Settings) (core.UserProfile, error)
	}

	// Versioned exposes a counter bumped on every mutation.
	Versioned interface {
		Version() uint64
	}

	// Store is everything a backend provides.
	Store interface {
		ExpenseReader
		ExpenseWriter
		ProfileStore
		Versioned
		Close() error
	}
)

// Seed is the initial state a backend starts from.
type Seed struct {
	Profile  core.UserProfile
	Expenses []core.Expense
}
