package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/store"
)

// ExpenseInput is an expense as typed into the form: amount and category are
// raw strings, a zero Date means today.
type ExpenseInput struct {
	Amount   string
	Category string
	Date     time.Time
	Note     string
}

// ExpenseService validates and records expenses and reads the collection.
type ExpenseService struct {
	store    store.Store
	notifier notify.Notifier
	logger   *log.Logger
	now      func() time.Time
}

func NewExpenseService(s store.Store, n notify.Notifier, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		store:    s,
		notifier: n,
		logger:   logger.WithComponent(log.ComponentExpense),
		now:      time.Now,
	}
}

// Build turns form input into a valid expense without storing it.
func (s *ExpenseService) Build(in ExpenseInput) (core.Expense, error) {
	amount, err := core.ParseAmount(strings.TrimSpace(in.Amount))
	if err != nil {
		return core.Expense{}, err
	}
	cat, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Expense{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	e := core.Expense{Amount: amount, Category: cat, Date: date, Description: strings.TrimSpace(in.Note)}
	return e, e.Validate()
}

// AddExpense validates in, stores it and notifies the user either way.
func (s *ExpenseService) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e, err := s.Build(in)
	if err != nil {
		s.notify(ctx, notify.Failure(titleMissingInput, err.Error()))
		return core.Expense{}, err
	}

	added, err := s.store.Add(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithExpense(added.ID, added.Amount, added.Category.String()).ToSlice()...)
	s.notify(ctx, notify.New(titleExpenseAdded, ""))
	return added, nil
}

// List returns up to limit expenses, newest first. limit <= 0 returns all.
func (s *ExpenseService) List(ctx context.Context, limit int) ([]core.Expense, error) {
	all, err := s.store.Expenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if limit <= 0 {
		return all, nil
	}
	return analytics.Recent(all, limit), nil
}

func (s *ExpenseService) notify(ctx context.Context, n notify.Notification) {
	notifyOrLog(ctx, s.notifier, s.logger, n)
}

// notifyOrLog delivers n and logs delivery failures; a notification never
// fails the operation that produced it.
func notifyOrLog(ctx context.Context, n notify.Notifier, logger *log.Logger, msg notify.Notification) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
		logger.WarnContext(ctx, "Notification delivery failed", "title", msg.Title, "error", err)
	}
}
