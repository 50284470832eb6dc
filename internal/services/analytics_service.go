// Package services composes the ledger store and the analytics engine into
// the operations the HTTP layer exposes: the assembled dashboard document,
// its cached variant, and the individual computations.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/aggregate"
	"github.com/fluxohq/fluxo/internal/engine/alerts"
	"github.com/fluxohq/fluxo/internal/engine/concentration"
	"github.com/fluxohq/fluxo/internal/engine/insights"
	"github.com/fluxohq/fluxo/internal/engine/kpi"
	"github.com/fluxohq/fluxo/internal/engine/projection"
	"github.com/fluxohq/fluxo/internal/engine/simulation"
	"github.com/fluxohq/fluxo/internal/modules/ledger"
)

// HistoryMonths is how many trailing months the dashboard history series
// carries.
const HistoryMonths = 12

// Dashboard is the assembled analytics document for one tenant at one
// reference date. It is what the dashboard endpoint serves and what the
// cache stores.
type Dashboard struct {
	TenantID    string    `json:"tenant_id"`
	GeneratedAt time.Time `json:"generated_at"`
	AsOf        time.Time `json:"as_of"`

	KPIs        kpi.Metrics                   `json:"kpis"`
	CashFlow    projection.Result             `json:"cash_flow"`
	Alerts      []alerts.Alert                `json:"alerts"`
	Clients     []concentration.ClientRevenue `json:"clients"`
	CostCenters []concentration.Line          `json:"cost_centers"`
	Categories  []concentration.Line          `json:"categories"`
	Insights    []insights.Insight            `json:"insights"`
	History     []aggregate.MonthTotals       `json:"history"`
}

// AnalyticsService runs the engine over ledger snapshots. Every computation
// takes an explicit asOf date; the service itself never reads the wall clock
// except to timestamp cache entries.
type AnalyticsService struct {
	loader *ledger.SnapshotLoader
	cache  *DashboardCache

	projectionDays int
	log            zerolog.Logger
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(loader *ledger.SnapshotLoader, cache *DashboardCache, projectionDays int, log zerolog.Logger) *AnalyticsService {
	if projectionDays <= 0 {
		projectionDays = projection.DefaultHorizonDays
	}
	return &AnalyticsService{
		loader:         loader,
		cache:          cache,
		projectionDays: projectionDays,
		log:            log.With().Str("service", "analytics").Logger(),
	}
}

// Snapshot loads the tenant's ledger snapshot.
func (s *AnalyticsService) Snapshot(ctx context.Context, tenantID string) (*domain.Snapshot, error) {
	return s.loader.Load(ctx, tenantID)
}

// CashFlow projects the tenant's balance over the configured horizon.
func (s *AnalyticsService) CashFlow(ctx context.Context, tenantID string, asOf time.Time, horizonDays int) (projection.Result, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return projection.Result{}, err
	}
	if horizonDays <= 0 {
		horizonDays = s.projectionDays
	}
	return projection.Project(snap, asOf, horizonDays), nil
}

// Alerts generates the tenant's operational alerts.
func (s *AnalyticsService) Alerts(ctx context.Context, tenantID string, asOf time.Time) ([]alerts.Alert, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	series := projection.Project(snap, asOf, s.projectionDays)
	return alerts.Generate(snap, series, asOf), nil
}

// KPIs computes the tenant's executive metrics.
func (s *AnalyticsService) KPIs(ctx context.Context, tenantID string, asOf time.Time) (kpi.Metrics, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return kpi.Metrics{}, err
	}
	return kpi.Compute(snap, asOf), nil
}

// ClientConcentration ranks the tenant's clients by revenue contribution.
func (s *AnalyticsService) ClientConcentration(ctx context.Context, tenantID string, asOf time.Time) ([]concentration.ClientRevenue, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return concentration.Clients(snap, asOf), nil
}

// DREByCostCenter builds the tenant's result statement grouped by cost center.
func (s *AnalyticsService) DREByCostCenter(ctx context.Context, tenantID string) ([]concentration.Line, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return concentration.BreakdownByCostCenter(snap), nil
}

// DREByCategory builds the tenant's result statement grouped by category.
func (s *AnalyticsService) DREByCategory(ctx context.Context, tenantID string) ([]concentration.Line, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return concentration.BreakdownByCategory(snap), nil
}

// Simulate runs a what-if scenario over the tenant's baseline. Results are
// never cached: parameters vary per request.
func (s *AnalyticsService) Simulate(ctx context.Context, tenantID string, asOf time.Time, params simulation.Params) (simulation.Result, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return simulation.Result{}, err
	}
	return simulation.Simulate(snap, asOf, params), nil
}

// Insights generates the tenant's ranked insights feed.
func (s *AnalyticsService) Insights(ctx context.Context, tenantID string, asOf time.Time) ([]insights.Insight, error) {
	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return insights.Generate(snap, asOf), nil
}

// Dashboard returns the tenant's assembled dashboard, served from cache when
// a cached document exists. A cache failure degrades to a live computation,
// never to an error.
func (s *AnalyticsService) Dashboard(ctx context.Context, tenantID string, asOf time.Time) (*Dashboard, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(tenantID)
		if err != nil {
			s.log.Warn().Err(err).Str("tenant", tenantID).Msg("Dashboard cache read failed, computing live")
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.Refresh(ctx, tenantID, asOf)
}

// Refresh recomputes the tenant's dashboard from the ledger and replaces the
// cached document.
func (s *AnalyticsService) Refresh(ctx context.Context, tenantID string, asOf time.Time) (*Dashboard, error) {
	start := time.Now()

	snap, err := s.loader.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	dashboard := s.build(snap, asOf)

	if s.cache != nil {
		if err := s.cache.Put(dashboard); err != nil {
			s.log.Warn().Err(err).Str("tenant", tenantID).Msg("Failed to cache dashboard")
		}
	}

	s.log.Info().
		Str("tenant", tenantID).
		Int("alerts", len(dashboard.Alerts)).
		Int("insights", len(dashboard.Insights)).
		Dur("duration", time.Since(start)).
		Msg("Refreshed dashboard")

	return dashboard, nil
}

// RefreshAll recomputes the dashboard for every tenant with ledger records.
// Per-tenant failures are logged and skipped; the refresher keeps going.
func (s *AnalyticsService) RefreshAll(ctx context.Context, asOf time.Time) error {
	tenants, err := s.loader.TenantIDs()
	if err != nil {
		return err
	}

	for _, tenantID := range tenants {
		if _, err := s.Refresh(ctx, tenantID, asOf); err != nil {
			s.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to refresh dashboard")
		}
	}

	s.log.Info().Int("tenants", len(tenants)).Msg("Dashboard refresh cycle completed")
	return nil
}

// Invalidate drops the tenant's cached dashboard so the next read recomputes.
func (s *AnalyticsService) Invalidate(tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(tenantID); err != nil {
		s.log.Warn().Err(err).Str("tenant", tenantID).Msg("Failed to invalidate dashboard cache")
	}
}

func (s *AnalyticsService) build(snap *domain.Snapshot, asOf time.Time) *Dashboard {
	series := projection.Project(snap, asOf, s.projectionDays)

	return &Dashboard{
		TenantID:    snap.TenantID,
		GeneratedAt: time.Now().UTC(),
		AsOf:        asOf,
		KPIs:        kpi.Compute(snap, asOf),
		CashFlow:    series,
		Alerts:      alerts.Generate(snap, series, asOf),
		Clients:     concentration.Clients(snap, asOf),
		CostCenters: concentration.BreakdownByCostCenter(snap),
		Categories:  concentration.BreakdownByCategory(snap),
		Insights:    insights.Generate(snap, asOf),
		History:     aggregate.TrailingMonths(snap, asOf, HistoryMonths),
	}
}
