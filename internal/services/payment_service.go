package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
)

// PaymentService simulates "Pay Now": it waits, then records the expense.
// No money moves anywhere.
type PaymentService struct {
	expenses *ExpenseService
	notifier notify.Notifier
	logger   *log.Logger
	delay    time.Duration
	after    func(time.Duration) <-chan time.Time
}

func NewPaymentService(expenses *ExpenseService, n notify.Notifier, logger *log.Logger, delay time.Duration) *PaymentService {
	return &PaymentService{
		expenses: expenses,
		notifier: n,
		logger:   logger.WithComponent(log.ComponentPayment),
		delay:    delay,
		after:    time.After,
	}
}

// PayNow validates in, waits for the configured delay and stores the
// expense. Cancelling ctx during the wait abandons the payment.
func (s *PaymentService) PayNow(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e, err := s.expenses.Build(in)
	if err != nil {
		notifyOrLog(ctx, s.notifier, s.logger, notify.Failure(titleMissingInput, err.Error()))
		return core.Expense{}, err
	}
	notifyOrLog(ctx, s.notifier, s.logger, notify.New(titlePaymentStarted, ""))

	select {
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Payment abandoned", log.FieldError, ctx.Err())
		return core.Expense{}, fmt.Errorf("pay now: %w", ctx.Err())
	case <-s.after(s.delay):
	}

	added, err := s.expenses.store.Add(ctx, e)
	if err != nil {
		notifyOrLog(ctx, s.notifier, s.logger, notify.Failure(titlePaymentFailed, err.Error()))
		return core.Expense{}, fmt.Errorf("record payment: %w", err)
	}

	s.logger.InfoContext(ctx, "Payment recorded",
		log.NewFields().WithExpense(added.ID, added.Amount, added.Category.String()).ToSlice()...)
	notifyOrLog(ctx, s.notifier, s.logger, notify.New(titlePaymentDone, ""))
	return added, nil
}
