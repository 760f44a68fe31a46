package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
	"budgetbook/internal/csvio"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/store/memory"
	"budgetbook/internal/store/storetest"
)

type fixture struct {
	store   *memory.Store
	history *notify.History
	logger  *log.Logger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return fixture{
		store:   memory.New(storetest.Seed()),
		history: notify.NewHistory(20),
		logger:  log.New(log.Config{Output: io.Discard}),
	}
}

func (f fixture) count(t *testing.T) int {
	t.Helper()
	got, err := f.store.Expenses(context.Background())
	require.NoError(t, err)
	return len(got)
}

func (f fixture) last(t *testing.T) notify.Notification {
	t.Helper()
	n, ok := f.history.Last()
	require.True(t, ok, "expected a notification")
	return n
}

func TestAddExpense(t *testing.T) {
	f := newFixture(t)
	svc := NewExpenseService(f.store, f.history, f.logger)
	fixed := time.Date(2025, 4, 21, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	e, err := svc.AddExpense(context.Background(), ExpenseInput{Amount: " 750 ", Category: "Food", Note: "Coffee"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.ID)
	assert.Equal(t, core.Food, e.Category)
	assert.True(t, e.Date.Equal(fixed), "zero date defaults to now")
	assert.Equal(t, 4, f.count(t))
	assert.Equal(t, titleExpenseAdded, f.last(t).Title)

	recent, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, e.ID, recent[0].ID)

	all, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAddExpenseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"missing amount", ExpenseInput{Category: "food"}, core.ErrMissingAmount},
		{"decimal amount", ExpenseInput{Amount: "5.50", Category: "food"}, core.ErrInvalidAmount},
		{"negative amount", ExpenseInput{Amount: "-5", Category: "food"}, core.ErrInvalidAmount},
		{"missing category", ExpenseInput{Amount: "5"}, core.ErrMissingCategory},
		{"unknown category", ExpenseInput{Amount: "5", Category: "travel"}, core.ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewExpenseService(f.store, f.history, f.logger)

			_, err := svc.AddExpense(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 3, f.count(t))
			n := f.last(t)
			assert.Equal(t, titleMissingInput, n.Title)
			assert.Equal(t, notify.VariantDestructive, n.Variant)
		})
	}
}

func TestImportCountMode(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.store, f.history, f.logger, ImportCount)

	in := csvio.Header + "\n1,500,food,2025-04-03T10:30:00.000Z,\n2,1500,bills,2025-04-03T10:30:00.000Z,\n"
	out, err := svc.Import(context.Background(), "upload.csv", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, csvio.ModeRowCountOnly, out.Mode)
	assert.Equal(t, 3, out.Count, "trailing newline counts as a row")
	assert.Equal(t, 3, f.count(t), "count mode never touches the collection")

	n := f.last(t)
	assert.Equal(t, titleImportOK, n.Title)
	assert.Equal(t, "3 expenses imported", n.Description)
}

func TestImportFailuresAreDistinct(t *testing.T) {
	tests := []struct {
		name     string
		mode     ImportMode
		in       io.Reader
		wantErr  error
		wantDesc string
	}{
		{"read failure", ImportCount, iotest.ErrReader(errors.New("device gone")), csvio.ErrRead, descImportRead},
		{"binary content", ImportCount, strings.NewReader("\xff\xfe\x00"), csvio.ErrMalformed, descImportParse},
		{"read failure while merging", ImportMerge, iotest.ErrReader(errors.New("device gone")), csvio.ErrRead, descImportRead},
		{"wrong header", ImportMerge, strings.NewReader("name,price\nx,1"), csvio.ErrHeaderMismatch, descImportParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewImportService(f.store, f.history, f.logger, tt.mode)

			_, err := svc.Import(context.Background(), "bad.csv", tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 3, f.count(t))

			n := f.last(t)
			assert.Equal(t, titleImportFailed, n.Title)
			assert.Equal(t, tt.wantDesc, n.Description)
			assert.Equal(t, notify.VariantDestructive, n.Variant)
		})
	}
}

func TestImportMergeRoundTrip(t *testing.T) {
	f := newFixture(t)
	exp := NewExportService(f.store, f.history, f.logger)
	file, err := exp.Export(context.Background())
	require.NoError(t, err)

	data := string(file.Data) + "\n9,abc,food,2025-04-03T10:30:00.000Z,"
	svc := NewImportService(f.store, f.history, f.logger, ImportMerge)
	out, err := svc.Import(context.Background(), file.Name, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, csvio.ModeFullyParsed, out.Mode)
	assert.Equal(t, 3, out.Count)
	require.Len(t, out.Rejected, 1)
	assert.ErrorIs(t, out.Rejected[0], core.ErrInvalidAmount)

	got, err := f.store.Expenses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 6)
	ids := map[int64]bool{}
	for _, e := range got {
		assert.False(t, ids[e.ID], "ids must stay unique after merge")
		ids[e.ID] = true
	}
	assert.Equal(t, "3 expenses imported", f.last(t).Description)
}

type blockingReader struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	close(b.started)
	<-b.release
	return 0, io.EOF
}

func TestImportRejectsConcurrentImport(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.store, f.history, f.logger, ImportCount)

	br := &blockingReader{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := svc.Import(context.Background(), "slow.csv", br)
		done <- err
	}()
	<-br.started

	_, err := svc.Import(context.Background(), "second.csv", strings.NewReader(csvio.Header))
	assert.ErrorIs(t, err, ErrImportInProgress)

	close(br.release)
	require.NoError(t, <-done)

	_, err = svc.Import(context.Background(), "third.csv", strings.NewReader(csvio.Header))
	assert.NoError(t, err, "the busy flag is released after the first import")
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.store, f.history, f.logger, ImportCount)

	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, csvio.ErrRead)
	assert.Equal(t, descImportRead, f.last(t).Description)

	path := filepath.Join(t.TempDir(), "drop.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvio.Header+"\na\nb"), 0o644))
	out, err := svc.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.store, f.history, f.logger)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "expenses_10-19-2026.csv", file.Name)
	assert.Equal(t, 3, file.Count)
	assert.True(t, strings.HasPrefix(string(file.Data), csvio.Header+"\n1,1500,bills,"))
	assert.False(t, strings.HasSuffix(string(file.Data), "\n"))
	assert.Equal(t, "3 expenses exported", f.last(t).Description)
}

func TestExportFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())
	svc := NewExportService(f.store, f.history, f.logger)

	file, err := svc.Export(context.Background())
	assert.ErrorIs(t, err, ErrExport)
	assert.Nil(t, file.Data, "no partial file on failure")
	n := f.last(t)
	assert.Equal(t, titleExportFailed, n.Title)
	assert.Equal(t, descExportFailed, n.Description)
}

func TestSettings(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.store, f.history, f.logger)
	ctx := context.Background()

	v, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), v.RecommendedBudget)

	v, err = svc.Update(ctx, SettingsInput{Salary: "60000", Budget: "25000", PaymentDate: 40})
	require.NoError(t, err)
	assert.Equal(t, 28, v.PaymentDate)
	assert.Equal(t, int64(24000), v.RecommendedBudget)
	assert.Equal(t, titleSettingsSaved, f.last(t).Title)

	p, _ := f.store.Profile(ctx)
	assert.Equal(t, int64(25000), p.Budget)

	_, err = svc.Update(ctx, SettingsInput{Salary: "6O000", Budget: "1", PaymentDate: 1})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, notify.VariantDestructive, f.last(t).Variant)
	p, _ = f.store.Profile(ctx)
	assert.Equal(t, int64(60000), p.Salary, "failed update leaves the profile alone")

	assert.Equal(t, 28, IncrementPaymentDate(28))
	assert.Equal(t, 2, IncrementPaymentDate(1))
	assert.Equal(t, 1, DecrementPaymentDate(1))
	assert.Equal(t, 27, DecrementPaymentDate(28))
}

func TestPayNow(t *testing.T) {
	f := newFixture(t)
	exp := NewExpenseService(f.store, f.history, f.logger)
	svc := NewPaymentService(exp, f.history, f.logger, 2*time.Second)

	var waited time.Duration
	svc.after = func(d time.Duration) <-chan time.Time {
		waited = d
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}

	e, err := svc.PayNow(context.Background(), ExpenseInput{Amount: "1200", Category: "bills"})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, waited)
	assert.Equal(t, core.Bills, e.Category)
	assert.Equal(t, 4, f.count(t))

	recent := f.history.Recent()
	require.GreaterOrEqual(t, len(recent), 2)
	assert.Equal(t, titlePaymentDone, recent[0].Title)
	assert.Equal(t, titlePaymentStarted, recent[1].Title)
}

func TestPayNowCancelled(t *testing.T) {
	f := newFixture(t)
	exp := NewExpenseService(f.store, f.history, f.logger)
	svc := NewPaymentService(exp, f.history, f.logger, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.PayNow(ctx, ExpenseInput{Amount: "1200", Category: "bills"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, f.count(t))

	_, err = svc.PayNow(context.Background(), ExpenseInput{Category: "bills"})
	assert.ErrorIs(t, err, core.ErrMissingAmount)
}

func TestInsightsFollowStoreVersion(t *testing.T) {
	f := newFixture(t)
	ins := NewInsightsService(f.store, 5, 16, time.Minute)
	exp := NewExpenseService(f.store, nil, f.logger)
	ref := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	d, err := ins.Dashboard(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2250), d.Spent)
	assert.Equal(t, "April 2025", d.MonthLabel)
	assert.Len(t, d.Recent, 3)

	_, err = exp.AddExpense(ctx, ExpenseInput{Amount: "750", Category: "food", Date: ref})
	require.NoError(t, err)

	d, err = ins.Dashboard(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), d.Spent, "a mutation must not serve a stale dashboard")

	r, err := ins.Analytics(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), r.Total)
	require.NotNil(t, r.TopShare)
	assert.Equal(t, core.Bills, r.TopShare.Category)
	assert.Len(t, ins.Caches(), 2)
}
