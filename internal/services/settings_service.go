package services

import (
	"context"
	"fmt"
	"strings"

	"budgetbook/internal/analytics"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/notify"
	"budgetbook/internal/store"
)

// SettingsInput is the settings form: salary and budget as typed.
type SettingsInput struct {
	Salary      string
	Budget      string
	PaymentDate int
}

// SettingsView is what the settings screen shows.
type SettingsView struct {
	core.Settings
	RecommendedBudget int64
}

type SettingsService struct {
	store    store.ProfileStore
	notifier notify.Notifier
	logger   *log.Logger
}

func NewSettingsService(s store.ProfileStore, n notify.Notifier, logger *log.Logger) *SettingsService {
	return &SettingsService{
		store:    s,
		notifier: n,
		logger:   logger.WithComponent(log.ComponentSettings),
	}
}

func (s *SettingsService) Get(ctx context.Context) (SettingsView, error) {
	p, err := s.store.Profile(ctx)
	if err != nil {
		return SettingsView{}, fmt.Errorf("load profile: %w", err)
	}
	return view(p.Settings()), nil
}

// Update saves the settings. Salary and budget must be digits only; the
// payment date is clamped into 1..28.
func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (SettingsView, error) {
	set, err := parseSettings(in)
	if err != nil {
		notifyOrLog(ctx, s.notifier, s.logger, notify.Failure(titleSettingsFailed, err.Error()))
		return SettingsView{}, err
	}

	p, err := s.store.UpdateSettings(ctx, set)
	if err != nil {
		return SettingsView{}, fmt.Errorf("update settings: %w", err)
	}

	s.logger.InfoContext(ctx, "Settings saved",
		"salary", p.Salary,
		"budget", p.Budget,
		"payment_date", p.PaymentDate)
	notifyOrLog(ctx, s.notifier, s.logger, notify.New(titleSettingsSaved, ""))
	return view(p.Settings()), nil
}

func parseSettings(in SettingsInput) (core.Settings, error) {
	salary, err := core.ParseAmount(strings.TrimSpace(in.Salary))
	if err != nil {
		return core.Settings{}, fmt.Errorf("salary: %w", err)
	}
	budget, err := core.ParseAmount(strings.TrimSpace(in.Budget))
	if err != nil {
		return core.Settings{}, fmt.Errorf("budget: %w", err)
	}
	return core.Settings{
		Salary:      salary,
		Budget:      budget,
		PaymentDate: core.ClampPaymentDate(in.PaymentDate),
	}, nil
}

func view(set core.Settings) SettingsView {
	return SettingsView{Settings: set, RecommendedBudget: analytics.RecommendedBudget(set.Salary)}
}

// IncrementPaymentDate moves the payment day forward, stopping at 28.
func IncrementPaymentDate(day int) int { return core.ClampPaymentDate(day + 1) }

// DecrementPaymentDate moves the payment day back, stopping at 1.
func DecrementPaymentDate(day int) int { return core.ClampPaymentDate(day - 1) }
