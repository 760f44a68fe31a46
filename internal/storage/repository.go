package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/mock"
	"budgetbook/internal/store"

	_ "modernc.org/sqlite"
)

// DefaultDSN names a shared-cache in-memory database.
const DefaultDSN = "file:budgetbook?mode=memory&cache=shared"

// ErrPersistentDSN rejects any DSN that would write to disk.
var ErrPersistentDSN = errors.New("sqlite dsn must be in-memory")

// IsMemoryDSN reports whether dsn keeps the database in process memory.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

type SQLiteRepository struct {
	db      *sql.DB
	version atomic.Uint64
	closed  atomic.Bool
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(ctx context.Context, dsn string, seed store.Seed) (*SQLiteRepository, error) {
	if !IsMemoryDSN(dsn) {
		return nil, fmt.Errorf("%w: %q", ErrPersistentDSN, dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.seed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed database: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) seed(ctx context.Context, seed store.Seed) error {
	items := append([]core.Expense(nil), seed.Expenses...)
	mock.SortNewestFirst(items)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	p := seed.Profile
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profile (id, name, avatar, salary, budget, payment_date) VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, avatar = excluded.avatar,
		 salary = excluded.salary, budget = excluded.budget, payment_date = excluded.payment_date`,
		p.Name, p.Avatar, p.Salary, p.Budget, p.PaymentDate); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	for i, e := range items {
		if err := insertExpense(ctx, tx, e, int64(i)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertExpense(ctx context.Context, tx *sql.Tx, e core.Expense, position int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, category, occurred_at, occurred_ns, description, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, string(e.Category), e.Date.Format(time.RFC3339Nano), e.Date.UnixNano(), e.Description, position)
	if err != nil {
		return fmt.Errorf("insert expense %d: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.db.Close()
}

// Expenses implements store.ExpenseReader
func (r *SQLiteRepository) Expenses(ctx context.Context) ([]core.Expense, error) {
	if r.closed.Load() {
		return nil, store.ErrClosed
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, category, occurred_at, description FROM expenses
		 ORDER BY occurred_ns DESC, position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			cat     string
			dateStr string
		)
		if err := rows.Scan(&e.ID, &e.Amount, &cat, &dateStr, &e.Description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(cat)
		if e.Date, err = time.Parse(time.RFC3339Nano, dateStr); err != nil {
			return nil, fmt.Errorf("expense %d date: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// Add implements store.ExpenseWriter
func (r *SQLiteRepository) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	var added core.Expense
	err := r.inTx(ctx, func(tx *sql.Tx, nextID, firstPos int64) error {
		e.ID = nextID
		added = e
		return insertExpense(ctx, tx, e, firstPos-1)
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", added.ID,
		"amount", added.Amount,
		"category", added.Category)

	return added, nil
}

// Merge implements store.ExpenseWriter
func (r *SQLiteRepository) Merge(ctx context.Context, expenses []core.Expense) (int, error) {
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(expenses) == 0 {
		return 0, nil
	}
	err := r.inTx(ctx, func(tx *sql.Tx, nextID, firstPos int64) error {
		base := firstPos - int64(len(expenses))
		for i, e := range expenses {
			e.ID = nextID + int64(i)
			if err := insertExpense(ctx, tx, e, base+int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expenses), nil
}

// inTx runs fn with the next free ID and the current lowest position, then
// commits and bumps the version.
func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx, nextID, firstPos int64) error) error {
	if r.closed.Load() {
		return store.ErrClosed
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nextID, firstPos int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id) + 1, 0), COALESCE(MIN(position), 0) FROM expenses`).Scan(&nextID, &firstPos); err != nil {
		return fmt.Errorf("read counters: %w", err)
	}
	if err := fn(tx, nextID, firstPos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.version.Add(1)
	return nil
}

// Profile implements store.ProfileStore
func (r *SQLiteRepository) Profile(ctx context.Context) (core.UserProfile, error) {
	if r.closed.Load() {
		return core.UserProfile{}, store.ErrClosed
	}
	var p core.UserProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT name, avatar, salary, budget, payment_date FROM profile WHERE id = 1`).
		Scan(&p.Name, &p.Avatar, &p.Salary, &p.Budget, &p.PaymentDate)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateSettings implements store.ProfileStore
func (r *SQLiteRepository) UpdateSettings(ctx context.Context, s core.Settings) (core.UserProfile, error) {
	if err := s.Validate(); err != nil {
		return core.UserProfile{}, err
	}
	if r.closed.Load() {
		return core.UserProfile{}, store.ErrClosed
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE profile SET salary = ?, budget = ?, payment_date = ? WHERE id = 1`,
		s.Salary, s.Budget, s.PaymentDate); err != nil {
		return core.UserProfile{}, fmt.Errorf("update settings: %w", err)
	}
	r.version.Add(1)

	slog.InfoContext(ctx, "Settings updated",
		"salary", s.Salary,
		"budget", s.Budget,
		"payment_date", s.PaymentDate)

	return r.Profile(ctx)
}

func (r *SQLiteRepository) Version() uint64 { return r.version.Load() }
