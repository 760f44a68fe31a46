package http

import (
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/csvio"
	"budgetbook/internal/services"
)

type expenseJSON struct {
	ID            int64     `json:"id"`
	Amount        int64     `json:"amount"`
	AmountLabel   string    `json:"amountLabel"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"categoryLabel"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	Note          string    `json:"note"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:            e.ID,
		Amount:        e.Amount,
		AmountLabel:   core.FormatAmount(e.Amount),
		Category:      e.Category.String(),
		CategoryLabel: e.Category.Label(),
		Date:          e.Date.UTC(),
		Description:   e.Description,
		Note:          e.DisplayNote(),
	}
}

func toExpenseList(in []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(in))
	for _, e := range in {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

type dashboardJSON struct {
	MonthLabel string        `json:"monthLabel"`
	Name       string        `json:"name"`
	Initial    string        `json:"initial"`
	Avatar     string        `json:"avatar,omitempty"`
	Spent      int64         `json:"spent"`
	Budget     int64         `json:"budget"`
	Remaining  int64         `json:"remaining"`
	Progress   int           `json:"progress"`
	Recent     []expenseJSON `json:"recent"`
}

func toDashboardJSON(d core.Dashboard) dashboardJSON {
	return dashboardJSON{
		MonthLabel: d.MonthLabel,
		Name:       d.Name,
		Initial:    d.Initial,
		Avatar:     d.Avatar,
		Spent:      d.Spent,
		Budget:     d.Budget,
		Remaining:  d.Remaining,
		Progress:   d.Progress,
		Recent:     toExpenseList(d.Recent),
	}
}

type shareJSON struct {
	Category   string `json:"category"`
	Amount     int64  `json:"amount"`
	Percentage int    `json:"percentage"`
}

type dayJSON struct {
	Day    int   `json:"day"`
	Amount int64 `json:"amount"`
}

type analyticsJSON struct {
	Year       int         `json:"year"`
	Month      int         `json:"month"`
	Total      int64       `json:"total"`
	Shares     []shareJSON `json:"shares"`
	Trend      []dayJSON   `json:"trend"`
	TopShare   *shareJSON  `json:"topCategory"`
	HighestDay *dayJSON    `json:"highestDay"`
}

func toAnalyticsJSON(r core.AnalyticsReport) analyticsJSON {
	out := analyticsJSON{
		Year:   r.Year,
		Month:  r.Month,
		Total:  r.Total,
		Shares: make([]shareJSON, 0, len(r.Shares)),
		Trend:  make([]dayJSON, 0, len(r.Trend)),
	}
	for _, s := range r.Shares {
		out.Shares = append(out.Shares, shareJSON{Category: s.Category.String(), Amount: s.Amount, Percentage: s.Percentage})
	}
	for _, d := range r.Trend {
		out.Trend = append(out.Trend, dayJSON{Day: d.Day, Amount: d.Amount})
	}
	if r.TopShare != nil {
		out.TopShare = &shareJSON{Category: r.TopShare.Category.String(), Amount: r.TopShare.Amount, Percentage: r.TopShare.Percentage}
	}
	if r.HighestDay != nil {
		out.HighestDay = &dayJSON{Day: r.HighestDay.Day, Amount: r.HighestDay.Amount}
	}
	return out
}

type settingsJSON struct {
	Salary            int64 `json:"salary"`
	Budget            int64 `json:"budget"`
	PaymentDate       int   `json:"paymentDate"`
	RecommendedBudget int64 `json:"recommendedBudget"`
}

func toSettingsJSON(v services.SettingsView) settingsJSON {
	return settingsJSON{
		Salary:            v.Salary,
		Budget:            v.Budget,
		PaymentDate:       v.PaymentDate,
		RecommendedBudget: v.RecommendedBudget,
	}
}

type rowErrorJSON struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importJSON struct {
	Mode     csvio.ImportMode `json:"mode"`
	Count    int              `json:"count"`
	Rejected []rowErrorJSON   `json:"rejected,omitempty"`
}

func toImportJSON(o services.ImportOutcome) importJSON {
	out := importJSON{Mode: o.Mode, Count: o.Count}
	for _, re := range o.Rejected {
		out.Rejected = append(out.Rejected, rowErrorJSON{Line: re.Line, Error: re.Err.Error()})
	}
	return out
}

type categoryJSON struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func categoriesJSON() []categoryJSON {
	cats := core.AllCategories()
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryJSON{ID: c.String(), Label: c.Label()})
	}
	return out
}
