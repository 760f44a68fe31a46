package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/analytics"
	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/store"
)

// InsightsService serves the dashboard and analytics aggregates, cached per
// reference day and store version.
type InsightsService struct {
	store       store.Store
	recentLimit int
	dashboards  *cache.LRUCache[core.Dashboard]
	reports     *cache.LRUCache[core.AnalyticsReport]
}

func NewInsightsService(s store.Store, recentLimit, cacheSize int, ttl time.Duration) *InsightsService {
	return &InsightsService{
		store:       s,
		recentLimit: recentLimit,
		dashboards:  cache.NewLRUCache[core.Dashboard](cacheSize, ttl),
		reports:     cache.NewLRUCache[core.AnalyticsReport](cacheSize, ttl),
	}
}

// Caches exposes the underlying caches for periodic sweeping.
func (s *InsightsService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboards, s.reports}
}

func (s *InsightsService) Dashboard(ctx context.Context, ref time.Time) (core.Dashboard, error) {
	key := cache.Key("dashboard", ref, s.store.Version())
	return s.dashboards.GetOrLoad(key, func() (core.Dashboard, error) {
		profile, err := s.store.Profile(ctx)
		if err != nil {
			return core.Dashboard{}, fmt.Errorf("load profile: %w", err)
		}
		expenses, err := s.store.Expenses(ctx)
		if err != nil {
			return core.Dashboard{}, fmt.Errorf("load expenses: %w", err)
		}
		return analytics.Overview(profile, expenses, ref, s.recentLimit), nil
	})
}

func (s *InsightsService) Analytics(ctx context.Context, ref time.Time) (core.AnalyticsReport, error) {
	key := cache.Key("analytics", ref, s.store.Version())
	return s.reports.GetOrLoad(key, func() (core.AnalyticsReport, error) {
		expenses, err := s.store.Expenses(ctx)
		if err != nil {
			return core.AnalyticsReport{}, fmt.Errorf("load expenses: %w", err)
		}
		return analytics.Report(expenses, ref), nil
	})
}
