// Package mock builds the synthetic dataset the app starts with.
package mock

import (
	"math/rand/v2"
	"sort"
	"time"

	"budgetbook/internal/core"
)

const (
	// DefaultCount is the number of expenses seeded at startup.
	DefaultCount = 20

	minAmount  = 100
	maxAmount  = 5000 // exclusive
	windowDays = 30
)

var descriptions = map[core.Category][]string{
	core.Food:          {"Lunch", "Dinner", "Groceries", "Coffee", "Restaurant"},
	core.Transport:     {"Uber", "Metro", "Bus", "Petrol", "Parking"},
	core.Bills:         {"Electricity", "Water", "Internet", "Mobile", "Rent"},
	core.Shopping:      {"Clothes", "Electronics", "Home Decor", "Gifts", "Books"},
	core.Entertainment: {"Movies", "Concert", "Games", "Subscription", "Pub"},
	core.Other:         {"Healthcare", "Education", "Charity", "Personal Care", "Miscellaneous"},
}

// Descriptions returns the candidate notes for a category.
func Descriptions(c core.Category) []string {
	return append([]string(nil), descriptions[c]...)
}

// Generator produces random expenses from an injectable source.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded with seed. A zero seed draws from
// the clock, so every run differs.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns count expenses dated within the 30 days ending at today,
// newest first. IDs are assigned 0..count-1 before sorting.
func (g *Generator) Generate(count int, today time.Time) []core.Expense {
	if count < 0 {
		count = 0
	}
	cats := core.AllCategories()
	out := make([]core.Expense, 0, count)
	for i := 0; i < count; i++ {
		cat := cats[g.rnd.IntN(len(cats))]
		notes := descriptions[cat]
		note := notes[g.rnd.IntN(len(notes))]
		daysAgo := g.rnd.IntN(windowDays)
		amount := int64(g.rnd.IntN(maxAmount-minAmount) + minAmount)

		out = append(out, core.Expense{
			ID:          int64(i),
			Amount:      amount,
			Category:    cat,
			Date:        today.AddDate(0, 0, -daysAgo),
			Description: note,
		})
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders expenses by date descending, keeping ties stable.
func SortNewestFirst(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
}

// DefaultProfile is the demo user the app boots with.
func DefaultProfile() core.UserProfile {
	return core.UserProfile{
		Name:        "Ananya Singh",
		Salary:      50000,
		Budget:      20000,
		PaymentDate: 1,
	}
}
