package csvio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"budgetbook/internal/core"
)

// ImportMode names how far an import went.
type ImportMode string

const (
	// ModeRowCountOnly acknowledges rows without reading their fields.
	ModeRowCountOnly ImportMode = "row_count_only"
	// ModeFullyParsed decodes every row into an expense.
	ModeFullyParsed ImportMode = "fully_parsed"
)

var (
	// ErrRead means the input could not be read at all.
	ErrRead = errors.New("read import file")
	// ErrMalformed means the bytes were read but are not CSV text.
	ErrMalformed = errors.New("malformed import file")
	// ErrHeaderMismatch means the first line is not the export header.
	ErrHeaderMismatch = errors.New("unexpected header")
)

// Result is the outcome of an import.
type Result interface {
	Count() int
	Mode() ImportMode
}

// RowCountOnly reports how many data lines a file had.
type RowCountOnly struct {
	Rows int
}

func (r RowCountOnly) Count() int       { return r.Rows }
func (r RowCountOnly) Mode() ImportMode { return ModeRowCountOnly }

// FullyParsed holds the decoded rows plus the rows that failed.
type FullyParsed struct {
	Expenses []core.Expense
	Errors   []RowError
}

func (r FullyParsed) Count() int       { return len(r.Expenses) }
func (r FullyParsed) Mode() ImportMode { return ModeFullyParsed }

// RowError locates a rejected row. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrMalformed)
	}
	if strings.IndexByte(string(data), 0) >= 0 {
		return "", fmt.Errorf("%w: contains NUL bytes", ErrMalformed)
	}
	return string(data), nil
}

// CountRows splits the content on "\n", treats the first line as an
// unvalidated header and counts everything after it. A trailing newline
// therefore counts as one more row.
func CountRows(r io.Reader) (RowCountOnly, error) {
	text, err := readText(r)
	if err != nil {
		return RowCountOnly{}, err
	}
	lines := strings.Split(text, "\n")
	n := len(lines) - 1
	if n < 0 {
		n = 0
	}
	return RowCountOnly{Rows: n}, nil
}

// Parse decodes an exported file. Rows are split the way Export writes them:
// one record per line, the first four commas separate fields and everything
// after the fourth is the description, quotes included. Bad rows are collected
// in Errors and do not stop the scan; blank lines are skipped.
func Parse(r io.Reader) (FullyParsed, error) {
	text, err := readText(r)
	if err != nil {
		return FullyParsed{}, err
	}

	lines := strings.Split(text, "\n")
	header := strings.TrimSuffix(lines[0], "\r")
	if strings.TrimSpace(header) == "" {
		return FullyParsed{}, fmt.Errorf("%w: empty file", ErrHeaderMismatch)
	}
	if !matchesHeader(strings.Split(header, ",")) {
		return FullyParsed{}, fmt.Errorf("%w: got %q", ErrHeaderMismatch, header)
	}

	var out FullyParsed
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseRecord(strings.SplitN(line, ",", len(headerFields)))
		if err != nil {
			out.Errors = append(out.Errors, RowError{Line: i + 2, Err: err})
			continue
		}
		out.Expenses = append(out.Expenses, e)
	}
	return out, nil
}

func matchesHeader(fields []string) bool {
	if len(fields) != len(headerFields) {
		return false
	}
	for i, f := range fields {
		f = strings.TrimPrefix(f, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(f), headerFields[i]) {
			return false
		}
	}
	return true
}

var errFieldCount = errors.New("expected at least 4 fields")

func parseRecord(rec []string) (core.Expense, error) {
	if len(rec) < 4 {
		return core.Expense{}, errFieldCount
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil || id < 0 {
		return core.Expense{}, fmt.Errorf("invalid id %q", rec[0])
	}
	amount, err := parseAmountField(rec[1])
	if err != nil {
		return core.Expense{}, err
	}
	cat, err := core.ParseCategory(rec[2])
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseTimestamp(rec[3])
	if err != nil {
		return core.Expense{}, err
	}
	var desc string
	if len(rec) > 4 {
		desc = rec[4]
	}
	e := core.Expense{ID: id, Amount: amount, Category: cat, Date: date, Description: desc}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// parseAmountField accepts digits, or a float with no fractional part such as
// "500.0" written by spreadsheet tools.
func parseAmountField(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := core.ParseAmount(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidAmount, s)
	}
	return int64(f), nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}
