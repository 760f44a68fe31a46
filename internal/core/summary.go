package core

// CategoryShare is a category's spend and its rounded share of the month total.
type CategoryShare struct {
	Category   Category
	Amount     int64
	Percentage int
}

// DayAmount is the spend for one day of the month.
type DayAmount struct {
	Day    int
	Amount int64
}

// Dashboard is the compact summary shown on the home screen.
type Dashboard struct {
	MonthLabel string // e.g. "October 2026"
	Name       string
	Initial    string
	Avatar     string
	Spent      int64
	Budget     int64
	Remaining  int64
	Progress   int // 0-100
	Recent     []Expense
}

// AnalyticsReport aggregates the current month for the analytics screen.
type AnalyticsReport struct {
	Year       int
	Month      int // 1-12
	Total      int64
	Shares     []CategoryShare
	Trend      []DayAmount
	TopShare   *CategoryShare
	HighestDay *DayAmount
}
