package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/modules/ledger"
	"github.com/fluxohq/fluxo/internal/services"

	_ "modernc.org/sqlite"
)

func setupRouter(t *testing.T) (*chi.Mux, *ledger.SnapshotLoader) {
	ledgerDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledgerDB.Close() })
	require.NoError(t, ledger.InitSchema(ledgerDB))

	loader := ledger.NewSnapshotLoader(ledgerDB, zerolog.Nop())
	svc := services.NewAnalyticsService(loader, nil, 30, zerolog.Nop())
	handler := NewHandler(svc, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, loader
}

func seedTenant(t *testing.T, loader *ledger.SnapshotLoader) {
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
}

func TestHandleCashFlow(t *testing.T) {
	router, loader := setupRouter(t)
	seedTenant(t, loader)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/t1/cashflow?as_of=2026-03-01&days=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			SeededBalance float64 `json:"seeded_balance"`
			Days          []struct {
				Balance float64 `json:"balance"`
			} `json:"days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1000.0, body.Data.SeededBalance)
	require.Len(t, body.Data.Days, 7)
	assert.Equal(t, 1200.0, body.Data.Days[1].Balance)
}

func TestHandleCashFlow_RejectsBadDays(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/t1/cashflow?days=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleKPIs(t *testing.T) {
	router, loader := setupRouter(t)
	seedTenant(t, loader)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/t1/kpis?as_of=2026-03-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			CurrentCash float64           `json:"current_cash"`
			Health      map[string]string `json:"health"`
		} `json:"data"`
		Metadata struct {
			AsOf string `json:"as_of"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1000.0, body.Data.CurrentCash)
	assert.Equal(t, "2026-03-01", body.Metadata.AsOf)
	assert.NotEmpty(t, body.Data.Health)
}

func TestHandleDRE_RejectsUnknownGrouping(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/t1/dre?by=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimulate(t *testing.T) {
	router, loader := setupRouter(t)
	seedTenant(t, loader)

	body := strings.NewReader(`{"revenue_growth_pct": 10, "expense_cut_pct": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/t1/simulate?as_of=2026-03-01", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Params struct {
				RevenueGrowthPct float64 `json:"revenue_growth_pct"`
			} `json:"params"`
			Periods []struct {
				Index int `json:"index"`
			} `json:"periods"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10.0, resp.Data.Params.RevenueGrowthPct)
	assert.Len(t, resp.Data.Periods, 6)
}

func TestHandleSimulate_RejectsInvalidBody(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/t1/simulate", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDashboard_EmptyTenant(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/nobody/dashboard?as_of=2026-03-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "an empty ledger is a valid state, not an error")

	var resp struct {
		Data struct {
			TenantID string `json:"tenant_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nobody", resp.Data.TenantID)
}

func TestHandleAlerts(t *testing.T) {
	router, loader := setupRouter(t)
	require.NoError(t, loader.Payables().Create(domain.Payable{
		ID: "big", TenantID: "t1", Amount: 5000,
		DueDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:  "aberto",
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/t1/alerts?as_of=2026-03-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Alerts []struct {
				Type     string `json:"type"`
				Severity string `json:"severity"`
			} `json:"alerts"`
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.Count, "an unfunded payable should raise a negative balance alert")
	assert.Equal(t, "negative_balance", resp.Data.Alerts[0].Type)
}
