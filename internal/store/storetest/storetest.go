// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh backend from seed for one subtest.
type Factory func(t *testing.T, seed store.Seed) store.Store

func at(d int) time.Time {
	return time.Date(2025, time.April, d, 9, 0, 0, 0, time.UTC)
}

// Seed is a small fixture: three expenses on two days.
func Seed() store.Seed {
	return store.Seed{
		Profile: core.UserProfile{Name: "Ananya Singh", Salary: 50000, Budget: 20000, PaymentDate: 1},
		Expenses: []core.Expense{
			{ID: 0, Amount: 500, Category: core.Food, Date: at(3), Description: "Lunch"},
			{ID: 1, Amount: 1500, Category: core.Bills, Date: at(10)},
			{ID: 2, Amount: 250, Category: core.Transport, Date: at(3), Description: "Metro"},
		},
	}
}

// Run exercises a backend against the shared contract.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("seeded snapshot is newest first", func(t *testing.T) {
		s := newStore(t, Seed())
		got, err := s.Expenses(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, []int64{0, 2}, []int64{got[1].ID, got[2].ID}, "ties keep seed order")
		assert.Equal(t, "Lunch", got[1].Description)
		assert.True(t, got[0].Date.Equal(at(10)))

		got[0].Amount = 1
		again, err := s.Expenses(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), again[0].Amount, "snapshot must be a copy")
	})

	t.Run("add assigns next id and bumps version", func(t *testing.T) {
		s := newStore(t, Seed())
		v := s.Version()
		added, err := s.Add(ctx, core.Expense{ID: 99, Amount: 700, Category: core.Shopping, Date: at(10), Description: "Books"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), added.ID)
		assert.Greater(t, s.Version(), v)

		got, err := s.Expenses(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, int64(3), got[0].ID, "newest insert sorts first among equal dates")
	})

	t.Run("add rejects invalid records", func(t *testing.T) {
		s := newStore(t, Seed())
		v := s.Version()
		_, err := s.Add(ctx, core.Expense{Amount: 10, Category: "travel", Date: at(1)})
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
		_, err = s.Add(ctx, core.Expense{Amount: -1, Category: core.Food, Date: at(1)})
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
		assert.Equal(t, v, s.Version())
	})

	t.Run("merge is all or nothing", func(t *testing.T) {
		s := newStore(t, Seed())
		batch := []core.Expense{
			{ID: 0, Amount: 10, Category: core.Other, Date: at(20)},
			{ID: 1, Amount: 20, Category: "nope", Date: at(21)},
		}
		n, err := s.Merge(ctx, batch)
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
		assert.Zero(t, n)
		got, _ := s.Expenses(ctx)
		assert.Len(t, got, 3)

		batch[1].Category = core.Entertainment
		n, err = s.Merge(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		got, _ = s.Expenses(ctx)
		require.Len(t, got, 5)
		assert.Equal(t, core.Entertainment, got[0].Category)

		seen := map[int64]bool{}
		for _, e := range got {
			assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
			seen[e.ID] = true
		}
	})

	t.Run("settings update the profile", func(t *testing.T) {
		s := newStore(t, Seed())
		p, err := s.UpdateSettings(ctx, core.Settings{Salary: 60000, Budget: 24000, PaymentDate: 15})
		require.NoError(t, err)
		assert.Equal(t, "Ananya Singh", p.Name)
		assert.Equal(t, 15, p.PaymentDate)

		p, err = s.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(24000), p.Budget)

		_, err = s.UpdateSettings(ctx, core.Settings{Salary: 1, Budget: 1, PaymentDate: 31})
		assert.ErrorIs(t, err, core.ErrInvalidPaymentDate)
	})

	t.Run("closed store refuses work", func(t *testing.T) {
		s := newStore(t, Seed())
		require.NoError(t, s.Close())
		_, err := s.Expenses(ctx)
		assert.ErrorIs(t, err, store.ErrClosed)
	})
}
