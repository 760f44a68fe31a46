// Package csvio converts the expense collection to and from CSV text.
//
// Export writes the legacy layout verbatim: fields are joined with commas and
// never quoted, so a description containing a comma or newline produces a
// row with extra columns. Parse folds extra columns back into the description;
// an embedded newline still breaks the row in two.
package csvio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"budgetbook/internal/core"
)

// Header is the first line of every exported file.
const Header = "id,amount,category,date,description"

// TimestampLayout is an ISO-8601 UTC instant with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var headerFields = strings.Split(Header, ",")

// Export writes expenses in collection order. Rows are separated by "\n" and
// the output has no trailing newline.
func Export(w io.Writer, expenses []core.Expense) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		if _, err := bw.WriteString("\n" + FormatRow(e)); err != nil {
			return fmt.Errorf("write row %d: %w", e.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// FormatRow renders one expense as an unquoted CSV line.
func FormatRow(e core.Expense) string {
	return strings.Join([]string{
		strconv.FormatInt(e.ID, 10),
		strconv.FormatInt(e.Amount, 10),
		string(e.Category),
		FormatTimestamp(e.Date),
		e.Description,
	}, ",")
}

// FormatTimestamp renders t as a UTC instant with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ExportFilename names a download after the export date, e.g.
// expenses_10-19-2026.csv.
func ExportFilename(t time.Time) string {
	date := fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
	return "expenses_" + strings.ReplaceAll(date, "/", "-") + ".csv"
}
