// Package analytics computes read-only aggregates over an expense collection.
//
// Every function takes the reference time explicitly. "Current month" means the
// year and month of ref in ref's location; callers pass time.Now() at the edge.
// None of the functions mutate their input.
package analytics

import (
	"math"
	"sort"
	"time"

	"budgetbook/internal/core"
)

// DaysInMonth returns the length of the given month, computed as day 0 of the
// following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func inMonth(e core.Expense, ref time.Time) bool {
	d := e.Date.In(ref.Location())
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

// MonthTotal sums the amounts dated in ref's month. Zero when nothing matches.
func MonthTotal(expenses []core.Expense, ref time.Time) int64 {
	var total int64
	for _, e := range expenses {
		if inMonth(e, ref) {
			total += e.Amount
		}
	}
	return total
}

// TotalsByCategory sums ref's month per category. Only categories with at
// least one expense appear as keys.
func TotalsByCategory(expenses []core.Expense, ref time.Time) map[core.Category]int64 {
	sums := make(map[core.Category]int64)
	for _, e := range expenses {
		if inMonth(e, ref) {
			sums[e.Category] += e.Amount
		}
	}
	return sums
}

// TotalsByDayOfMonth sums ref's month per day. The key set is always
// 1..DaysInMonth, with zero for days without expenses.
func TotalsByDayOfMonth(expenses []core.Expense, ref time.Time) map[int]int64 {
	days := DaysInMonth(ref.Year(), ref.Month())
	sums := make(map[int]int64, days)
	for d := 1; d <= days; d++ {
		sums[d] = 0
	}
	for _, e := range expenses {
		if inMonth(e, ref) {
			sums[e.Date.In(ref.Location()).Day()] += e.Amount
		}
	}
	return sums
}

// Recent returns the first limit expenses of an already newest-first
// collection. It copies, never re-sorts.
func Recent(expenses []core.Expense, limit int) []core.Expense {
	if limit <= 0 {
		return []core.Expense{}
	}
	if limit > len(expenses) {
		limit = len(expenses)
	}
	out := make([]core.Expense, limit)
	copy(out, expenses[:limit])
	return out
}

// CategoryShares lists each present category with its rounded percentage of
// the month total, largest share first.
func CategoryShares(expenses []core.Expense, ref time.Time) []core.CategoryShare {
	sums := TotalsByCategory(expenses, ref)
	var total int64
	for _, v := range sums {
		total += v
	}
	shares := make([]core.CategoryShare, 0, len(sums))
	for c, amt := range sums {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(amt) / float64(total) * 100))
		}
		shares = append(shares, core.CategoryShare{Category: c, Amount: amt, Percentage: pct})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percentage != shares[j].Percentage {
			return shares[i].Percentage > shares[j].Percentage
		}
		return shares[i].Category.Index() < shares[j].Category.Index()
	})
	return shares
}

// DailyTrend returns the days of ref's month that have spending, ascending.
func DailyTrend(expenses []core.Expense, ref time.Time) []core.DayAmount {
	byDay := TotalsByDayOfMonth(expenses, ref)
	trend := make([]core.DayAmount, 0, len(byDay))
	for d := 1; d <= len(byDay); d++ {
		if amt := byDay[d]; amt > 0 {
			trend = append(trend, core.DayAmount{Day: d, Amount: amt})
		}
	}
	return trend
}

// HighestSpendingDay returns the day with the largest spend in ref's month.
// The earliest day wins a tie. ok is false when the month has no spending.
func HighestSpendingDay(expenses []core.Expense, ref time.Time) (best core.DayAmount, ok bool) {
	for _, d := range DailyTrend(expenses, ref) {
		if !ok || d.Amount > best.Amount {
			best, ok = d, true
		}
	}
	return best, ok
}

// RecommendedBudget is 40% of salary, rounded.
func RecommendedBudget(salary int64) int64 {
	return int64(math.Round(float64(salary) * 0.4))
}

// Progress returns spent as a percentage of budget, clamped to 0..100.
func Progress(spent, budget int64) int {
	if budget <= 0 {
		if spent > 0 {
			return 100
		}
		return 0
	}
	pct := int(float64(spent) / float64(budget) * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
