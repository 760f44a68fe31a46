package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/services"
)

const maxJSONBody = 1 << 20

var errBadRequest = errors.New("bad request")

// textField decodes a JSON string or number as the raw text a form field
// would hold.
type textField string

func (f *textField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = textField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = textField(n.String())
	return nil
}

type expenseRequest struct {
	Amount   textField `json:"amount"`
	Category string    `json:"category"`
	Date     string    `json:"date"`
	Note     string    `json:"note"`
}

type settingsRequest struct {
	Salary      textField `json:"salary"`
	Budget      textField `json:"budget"`
	PaymentDate int       `json:"paymentDate"`
}

// ParseExpenseRequest reads an expense from a JSON or form body.
func ParseExpenseRequest(r *http.Request) (services.ExpenseInput, error) {
	var req expenseRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return services.ExpenseInput{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		req = expenseRequest{
			Amount:   textField(r.PostForm.Get("amount")),
			Category: r.PostForm.Get("category"),
			Date:     r.PostForm.Get("date"),
			Note:     r.PostForm.Get("note"),
		}
	} else if err := decodeJSON(r, &req); err != nil {
		return services.ExpenseInput{}, err
	}

	in := services.ExpenseInput{
		Amount:   string(req.Amount),
		Category: req.Category,
		Note:     SanitizeInput(req.Note),
	}
	if strings.TrimSpace(req.Date) != "" {
		d, err := ParseDate(req.Date)
		if err != nil {
			return services.ExpenseInput{}, err
		}
		in.Date = d
	}
	return in, nil
}

// ParseSettingsRequest reads the settings form from a JSON or form body.
func ParseSettingsRequest(r *http.Request) (services.SettingsInput, error) {
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return services.SettingsInput{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		day, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("paymentDate")))
		if err != nil {
			return services.SettingsInput{}, fmt.Errorf("%w: %v", core.ErrInvalidPaymentDate, err)
		}
		return services.SettingsInput{
			Salary:      r.PostForm.Get("salary"),
			Budget:      r.PostForm.Get("budget"),
			PaymentDate: day,
		}, nil
	}

	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		return services.SettingsInput{}, err
	}
	return services.SettingsInput{
		Salary:      string(req.Salary),
		Budget:      string(req.Budget),
		PaymentDate: req.PaymentDate,
	}, nil
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 instant.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// ParseRefDate reads the ?date= reference day, defaulting to now. A bare day
// is taken in now's location so it buckets months like the default.
func ParseRefDate(r *http.Request, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, now.Location()); err == nil {
		return t, nil
	}
	return ParseDate(v)
}

// ParseLimit reads ?limit=, falling back to def. Zero means no limit.
func ParseLimit(r *http.Request, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid limit %q", errBadRequest, v)
	}
	return n, nil
}

// SanitizeInput trims s and strips control characters other than tab and
// newlines.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func isForm(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/x-www-form-urlencoded"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
