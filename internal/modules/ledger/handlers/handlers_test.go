package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	handler := NewHandler(loader, svc, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, loader
}

func TestHandleCreatePayable_GeneratesID(t *testing.T) {
	router, loader := setupRouter(t)

	body := strings.NewReader(`{"amount": 500, "due_date": "2026-03-10T00:00:00Z", "status": "aberto"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/t1/payables", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			ID       string  `json:"id"`
			TenantID string  `json:"tenant_id"`
			Amount   float64 `json:"amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ID, "missing IDs should be generated")
	assert.Equal(t, "t1", resp.Data.TenantID)

	payables, err := loader.Payables().ListByTenant("t1", nil, nil)
	require.NoError(t, err)
	require.Len(t, payables, 1)
	assert.Equal(t, 500.0, payables[0].Amount)
}

func TestHandleCreatePayable_RejectsNegativeAmount(t *testing.T) {
	router, _ := setupRouter(t)

	body := strings.NewReader(`{"amount": -10, "status": "aberto"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/t1/payables", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateReceivable(t *testing.T) {
	router, loader := setupRouter(t)

	body := strings.NewReader(`{"id": "rec-1", "amount": 1200, "due_date": "2026-04-01T00:00:00Z", "status": "emitido", "client_id": "c1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/t1/receivables", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	receivables, err := loader.Receivables().ListByTenant("t1", nil, nil)
	require.NoError(t, err)
	require.Len(t, receivables, 1)
	assert.Equal(t, "rec-1", receivables[0].ID)
	assert.Equal(t, "c1", receivables[0].ClientID)
}

func TestHandleListPayables_RejectsBadWindow(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/t1/payables?from=notadate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpsertClient_RequiresName(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/ledger/t1/clients", strings.NewReader(`{"id": "c1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecordAndGetBalance(t *testing.T) {
	router, _ := setupRouter(t)

	post := httptest.NewRequest(http.MethodPost, "/api/ledger/t1/balance",
		strings.NewReader(`{"balance": 7500, "recorded_at": "2026-03-01T09:00:00Z"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, post)
	require.Equal(t, http.StatusCreated, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/ledger/t1/balance", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Balance float64 `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7500.0, resp.Data.Balance)
}

func TestHandleGetBalance_MissingIsNull(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ledger/nobody/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data *struct{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Data)
}
