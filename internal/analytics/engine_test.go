package analytics

import (
	"testing"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 30, 0, 0, time.UTC)
}

func scenario(ref time.Time) []core.Expense {
	return []core.Expense{
		{ID: 1, Amount: 500, Category: core.Food, Date: day(ref.Year(), ref.Month(), 3)},
		{ID: 2, Amount: 1500, Category: core.Bills, Date: day(ref.Year(), ref.Month(), 3)},
	}
}

func TestScenarioTwoExpensesSameDay(t *testing.T) {
	ref := day(2025, time.April, 20)
	exps := scenario(ref)

	assert.Equal(t, int64(2000), MonthTotal(exps, ref))
	assert.Equal(t, map[core.Category]int64{core.Food: 500, core.Bills: 1500}, TotalsByCategory(exps, ref))

	byDay := TotalsByDayOfMonth(exps, ref)
	require.Len(t, byDay, 30)
	for d, amt := range byDay {
		if d == 3 {
			assert.Equal(t, int64(2000), amt)
		} else {
			assert.Zero(t, amt, "day %d", d)
		}
	}
}

func TestOtherMonthsAreIgnored(t *testing.T) {
	ref := day(2025, time.March, 10)
	exps := []core.Expense{
		{ID: 1, Amount: 100, Category: core.Food, Date: day(2025, time.March, 1)},
		{ID: 2, Amount: 200, Category: core.Food, Date: day(2025, time.February, 28)},
		{ID: 3, Amount: 400, Category: core.Transport, Date: day(2024, time.March, 10)},
	}
	assert.Equal(t, int64(100), MonthTotal(exps, ref))
	assert.Equal(t, map[core.Category]int64{core.Food: 100}, TotalsByCategory(exps, ref))
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DaysInMonth(tc.year, tc.month), "%d-%02d", tc.year, tc.month)
		got := TotalsByDayOfMonth(nil, day(tc.year, tc.month, 1))
		assert.Len(t, got, tc.want)
	}
}

func TestBoundaries(t *testing.T) {
	ref := day(2025, time.June, 1)
	assert.Empty(t, TotalsByCategory(nil, ref))
	assert.Empty(t, Recent(scenario(ref), 0))
	assert.Empty(t, Recent(scenario(ref), -1))
	assert.Zero(t, MonthTotal(scenario(day(2025, time.May, 1)), ref))
	_, ok := HighestSpendingDay(nil, ref)
	assert.False(t, ok)
}

func TestRecentIsPrefixCopy(t *testing.T) {
	ref := day(2025, time.June, 15)
	exps := mock.NewGenerator(3).Generate(10, ref)

	got := Recent(exps, 4)
	require.Len(t, got, 4)
	assert.Equal(t, exps[:4], got)

	got[0].Amount = -1
	assert.NotEqual(t, int64(-1), exps[0].Amount, "Recent must not alias the input")

	assert.Len(t, Recent(exps, 50), 10)
}

func TestGeneratedDatasetProperties(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		ref := day(2025, time.Month(seed%12+1), int(seed%28+1))
		exps := mock.NewGenerator(seed).Generate(mock.DefaultCount, ref)
		total := MonthTotal(exps, ref)

		var catSum int64
		for _, v := range TotalsByCategory(exps, ref) {
			catSum += v
		}
		assert.Equal(t, total, catSum, "seed %d: category sum", seed)

		byDay := TotalsByDayOfMonth(exps, ref)
		var daySum int64
		for _, v := range byDay {
			daySum += v
		}
		assert.Equal(t, total, daySum, "seed %d: day sum", seed)
		assert.Len(t, byDay, DaysInMonth(ref.Year(), ref.Month()))

		for _, limit := range []int{0, 1, 5, 20, 25} {
			r := Recent(exps, limit)
			assert.Len(t, r, min(limit, len(exps)))
			for i := 1; i < len(r); i++ {
				assert.False(t, r[i].Date.After(r[i-1].Date), "seed %d: recent not sorted", seed)
			}
		}

		// idempotent without mutation
		assert.Equal(t, TotalsByCategory(exps, ref), TotalsByCategory(exps, ref))
		assert.Equal(t, byDay, TotalsByDayOfMonth(exps, ref))
	}
}

func TestCategorySharesAndTrend(t *testing.T) {
	ref := day(2025, time.July, 31)
	exps := []core.Expense{
		{ID: 1, Amount: 300, Category: core.Food, Date: day(2025, time.July, 2)},
		{ID: 2, Amount: 600, Category: core.Shopping, Date: day(2025, time.July, 9)},
		{ID: 3, Amount: 100, Category: core.Transport, Date: day(2025, time.July, 9)},
	}

	shares := CategoryShares(exps, ref)
	require.Len(t, shares, 3)
	assert.Equal(t, core.CategoryShare{Category: core.Shopping, Amount: 600, Percentage: 60}, shares[0])
	assert.Equal(t, core.CategoryShare{Category: core.Food, Amount: 300, Percentage: 30}, shares[1])
	assert.Equal(t, core.CategoryShare{Category: core.Transport, Amount: 100, Percentage: 10}, shares[2])

	trend := DailyTrend(exps, ref)
	assert.Equal(t, []core.DayAmount{{Day: 2, Amount: 300}, {Day: 9, Amount: 700}}, trend)

	best, ok := HighestSpendingDay(exps, ref)
	require.True(t, ok)
	assert.Equal(t, core.DayAmount{Day: 9, Amount: 700}, best)
}

func TestRecommendedBudgetAndProgress(t *testing.T) {
	assert.Equal(t, int64(20000), RecommendedBudget(50000))
	assert.Equal(t, int64(1), RecommendedBudget(3))
	assert.Equal(t, 50, Progress(10000, 20000))
	assert.Equal(t, 100, Progress(30000, 20000))
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 100, Progress(5, 0))
}

func TestOverviewAndReport(t *testing.T) {
	ref := day(2025, time.April, 20)
	profile := core.UserProfile{Name: "Ananya Singh", Budget: 1500}
	exps := scenario(ref)

	ov := Overview(profile, exps, ref, 5)
	assert.Equal(t, "April 2025", ov.MonthLabel)
	assert.Equal(t, "A", ov.Initial)
	assert.Equal(t, int64(2000), ov.Spent)
	assert.Zero(t, ov.Remaining)
	assert.Equal(t, 100, ov.Progress)
	assert.Len(t, ov.Recent, 2)

	rep := Report(exps, ref)
	assert.Equal(t, int64(2000), rep.Total)
	require.NotNil(t, rep.TopShare)
	assert.Equal(t, core.Bills, rep.TopShare.Category)
	assert.Equal(t, 75, rep.TopShare.Percentage)
	require.NotNil(t, rep.HighestDay)
	assert.Equal(t, 3, rep.HighestDay.Day)

	empty := Report(nil, ref)
	assert.Nil(t, empty.TopShare)
	assert.Nil(t, empty.HighestDay)
}
