// Package handlers provides HTTP handlers for the ledger store: payable and
// receivable CRUD, reference dictionary upserts and manual balance snapshots.
// Writes invalidate the tenant's cached dashboard so the next analytics read
// recomputes.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/domain"
	"github.com/fluxohq/fluxo/internal/modules/ledger"
	"github.com/fluxohq/fluxo/internal/services"
)

// Handler handles ledger HTTP requests
type Handler struct {
	loader    *ledger.SnapshotLoader
	analytics *services.AnalyticsService
	log       zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(loader *ledger.SnapshotLoader, analytics *services.AnalyticsService, log zerolog.Logger) *Handler {
	return &Handler{
		loader:    loader,
		analytics: analytics,
		log:       log.With().Str("handler", "ledger").Logger(),
	}
}

// BalanceRequest represents a manual balance confirmation
type BalanceRequest struct {
	Balance    float64    `json:"balance"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// HandleListPayables handles GET /api/ledger/{tenantID}/payables
func (h *Handler) HandleListPayables(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	from, to, ok := h.dateWindow(w, r)
	if !ok {
		return
	}

	payables, err := h.loader.Payables().ListByTenant(tenantID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to list payables")
		http.Error(w, "Failed to list payables", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  payables,
		"count": len(payables),
	})
}

// HandleCreatePayable handles POST /api/ledger/{tenantID}/payables
func (h *Handler) HandleCreatePayable(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var payable domain.Payable
	if err := json.NewDecoder(r.Body).Decode(&payable); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payable.Amount < 0 {
		http.Error(w, "amount must be non-negative", http.StatusBadRequest)
		return
	}
	payable.TenantID = tenantID
	if payable.ID == "" {
		payable.ID = uuid.New().String()
	}

	if err := h.loader.Payables().Create(payable); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to create payable")
		http.Error(w, "Failed to create payable", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": payable})
}

// HandleListReceivables handles GET /api/ledger/{tenantID}/receivables
func (h *Handler) HandleListReceivables(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	from, to, ok := h.dateWindow(w, r)
	if !ok {
		return
	}

	receivables, err := h.loader.Receivables().ListByTenant(tenantID, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to list receivables")
		http.Error(w, "Failed to list receivables", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  receivables,
		"count": len(receivables),
	})
}

// HandleCreateReceivable handles POST /api/ledger/{tenantID}/receivables
func (h *Handler) HandleCreateReceivable(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var receivable domain.Receivable
	if err := json.NewDecoder(r.Body).Decode(&receivable); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if receivable.Amount < 0 {
		http.Error(w, "amount must be non-negative", http.StatusBadRequest)
		return
	}
	receivable.TenantID = tenantID
	if receivable.ID == "" {
		receivable.ID = uuid.New().String()
	}

	if err := h.loader.Receivables().Create(receivable); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to create receivable")
		http.Error(w, "Failed to create receivable", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": receivable})
}

// HandleUpsertClient handles PUT /api/ledger/{tenantID}/clients
func (h *Handler) HandleUpsertClient(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var client domain.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if client.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	client.TenantID = tenantID
	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	if err := h.loader.References().UpsertClient(client); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to upsert client")
		http.Error(w, "Failed to upsert client", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": client})
}

// HandleUpsertCostCenter handles PUT /api/ledger/{tenantID}/cost-centers
func (h *Handler) HandleUpsertCostCenter(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var center domain.CostCenter
	if err := json.NewDecoder(r.Body).Decode(&center); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if center.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	center.TenantID = tenantID
	if center.ID == "" {
		center.ID = uuid.New().String()
	}

	if err := h.loader.References().UpsertCostCenter(center); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to upsert cost center")
		http.Error(w, "Failed to upsert cost center", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": center})
}

// HandleUpsertCategory handles PUT /api/ledger/{tenantID}/categories
func (h *Handler) HandleUpsertCategory(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if category.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	category.TenantID = tenantID
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	if err := h.loader.References().UpsertCategory(category); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to upsert category")
		http.Error(w, "Failed to upsert category", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": category})
}

// HandleGetBalance handles GET /api/ledger/{tenantID}/balance
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	balance, err := h.loader.Balances().Latest(tenantID)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to get balance")
		http.Error(w, "Failed to get balance", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": balance})
}

// HandleRecordBalance handles POST /api/ledger/{tenantID}/balance
func (h *Handler) HandleRecordBalance(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req BalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	if err := h.loader.Balances().Record(tenantID, req.Balance, recordedAt); err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to record balance")
		http.Error(w, "Failed to record balance", http.StatusInternalServerError)
		return
	}
	h.analytics.Invalidate(tenantID)

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": domain.BalanceSnapshot{Balance: req.Balance, RecordedAt: recordedAt},
	})
}

// dateWindow parses the optional from/to query parameters.
func (h *Handler) dateWindow(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &from}, {"to", &to}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			http.Error(w, p.name+" must be a YYYY-MM-DD date", http.StatusBadRequest)
			return nil, nil, false
		}
		*p.dst = &parsed
	}
	return from, to, true
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
