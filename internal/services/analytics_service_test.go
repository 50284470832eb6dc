package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/engine/simulation"
	"github.com/fluxohq/fluxo/internal/modules/ledger"

	_ "modernc.org/sqlite"
)

func setupAnalyticsTest(t *testing.T) (*AnalyticsService, *ledger.SnapshotLoader) {
	ledgerDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledgerDB.Close() })
	require.NoError(t, ledger.InitSchema(ledgerDB))

	cacheDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cacheDB.Close() })

	cache := NewDashboardCache(cacheDB, zerolog.Nop())
	require.NoError(t, cache.InitSchema())

	loader := ledger.NewSnapshotLoader(ledgerDB, zerolog.Nop())
	svc := NewAnalyticsService(loader, cache, 30, zerolog.Nop())
	return svc, loader
}

func seedBasicLedger(t *testing.T, loader *ledger.SnapshotLoader) {
	require.NoError(t, loader.Balances().Record("t1", 1000, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, loader.Receivables().Create(domain.Receivable{
		ID: "r1", TenantID: "t1", Amount: 500,
		DueDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:  "emitido", ClientID: "c1",
	}))
	require.NoError(t, loader.Payables().Create(domain.Payable{
		ID: "p1", TenantID: "t1", Amount: 300,
		DueDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:  "aberto",
	}))
	require.NoError(t, loader.References().UpsertClient(domain.Client{ID: "c1", TenantID: "t1", Name: "Acme"}))
}

func TestCashFlow_ProjectsSeededBalance(t *testing.T) {
	svc, loader := setupAnalyticsTest(t)
	seedBasicLedger(t, loader)
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.CashFlow(context.Background(), "t1", asOf, 7)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.SeededBalance)
	require.Len(t, result.Days, 7)
	assert.Equal(t, 1200.0, result.Days[1].Balance, "day 2 should carry the +500/-300 net movement")
}

func TestDashboard_AssemblesAllSections(t *testing.T) {
	svc, loader := setupAnalyticsTest(t)
	seedBasicLedger(t, loader)
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	dashboard, err := svc.Dashboard(context.Background(), "t1", asOf)
	require.NoError(t, err)

	assert.Equal(t, "t1", dashboard.TenantID)
	assert.Equal(t, asOf, dashboard.AsOf)
	assert.NotEmpty(t, dashboard.CashFlow.Days)
	assert.NotEmpty(t, dashboard.Clients)
	assert.Len(t, dashboard.History, HistoryMonths)
	assert.NotNil(t, dashboard.KPIs.Health)
}

func TestDashboard_ServedFromCache(t *testing.T) {
	svc, loader := setupAnalyticsTest(t)
	seedBasicLedger(t, loader)
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Dashboard(context.Background(), "t1", asOf)
	require.NoError(t, err)

	// A ledger change without a refresh must not show up: the cached
	// document wins until invalidated.
	require.NoError(t, loader.Payables().Create(domain.Payable{
		ID: "p2", TenantID: "t1", Amount: 9999,
		DueDate: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Status:  "aberto",
	}))

	second, err := svc.Dashboard(context.Background(), "t1", asOf)
	require.NoError(t, err)
	assert.Equal(t, first.CashFlow.Days[len(first.CashFlow.Days)-1].Balance,
		second.CashFlow.Days[len(second.CashFlow.Days)-1].Balance)

	svc.Invalidate("t1")
	third, err := svc.Dashboard(context.Background(), "t1", asOf)
	require.NoError(t, err)
	assert.NotEqual(t, first.CashFlow.Days[len(first.CashFlow.Days)-1].Balance,
		third.CashFlow.Days[len(third.CashFlow.Days)-1].Balance,
		"invalidation should force a recompute that sees the new payable")
}

func TestRefreshAll_CoversEveryTenant(t *testing.T) {
	svc, loader := setupAnalyticsTest(t)
	seedBasicLedger(t, loader)
	require.NoError(t, loader.Receivables().Create(domain.Receivable{
		ID: "r-t2", TenantID: "t2", Amount: 100,
		DueDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:  "emitido",
	}))
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RefreshAll(context.Background(), asOf))

	for _, tenant := range []string{"t1", "t2"} {
		dashboard, err := svc.Dashboard(context.Background(), tenant, asOf)
		require.NoError(t, err)
		assert.Equal(t, tenant, dashboard.TenantID)
	}
}

func TestSimulate_ZeroParams(t *testing.T) {
	svc, loader := setupAnalyticsTest(t)
	seedBasicLedger(t, loader)
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.Simulate(context.Background(), "t1", asOf, simulation.Params{})
	require.NoError(t, err)
	assert.Equal(t, result.BaselineRevenue, result.SimulatedRevenue)
	assert.Equal(t, result.BaselineExpenses, result.SimulatedExpenses)
}

func TestDashboardCache_RoundTrip(t *testing.T) {
	cacheDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cacheDB.Close() })

	cache := NewDashboardCache(cacheDB, zerolog.Nop())
	require.NoError(t, cache.InitSchema())

	miss, err := cache.Get("nobody")
	require.NoError(t, err)
	assert.Nil(t, miss)

	dashboard := &Dashboard{
		TenantID:    "t1",
		GeneratedAt: time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC),
		AsOf:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Put(dashboard))

	got, err := cache.Get("t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, dashboard.TenantID, got.TenantID)
	assert.True(t, dashboard.GeneratedAt.Equal(got.GeneratedAt))

	require.NoError(t, cache.Invalidate("t1"))
	gone, err := cache.Get("t1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
