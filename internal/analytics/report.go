package analytics

import (
	"time"

	"budgetbook/internal/core"
)

// Overview builds the dashboard summary for ref's month.
func Overview(profile core.UserProfile, expenses []core.Expense, ref time.Time, recentLimit int) core.Dashboard {
	spent := MonthTotal(expenses, ref)
	remaining := profile.Budget - spent
	if remaining < 0 {
		remaining = 0
	}
	return core.Dashboard{
		MonthLabel: ref.Format("January 2006"),
		Name:       profile.Name,
		Initial:    profile.Initial(),
		Avatar:     profile.Avatar,
		Spent:      spent,
		Budget:     profile.Budget,
		Remaining:  remaining,
		Progress:   Progress(spent, profile.Budget),
		Recent:     Recent(expenses, recentLimit),
	}
}

// Report builds the analytics screen data for ref's month.
func Report(expenses []core.Expense, ref time.Time) core.AnalyticsReport {
	r := core.AnalyticsReport{
		Year:   ref.Year(),
		Month:  int(ref.Month()),
		Total:  MonthTotal(expenses, ref),
		Shares: CategoryShares(expenses, ref),
		Trend:  DailyTrend(expenses, ref),
	}
	if len(r.Shares) > 0 {
		top := r.Shares[0]
		r.TopShare = &top
	}
	if best, ok := HighestSpendingDay(expenses, ref); ok {
		r.HighestDay = &best
	}
	return r
}
