// Package handlers provides HTTP handlers for the analytics engine: cash-flow
// projection, alerts, KPIs, concentration, result statements, what-if
// simulation, insights and the assembled dashboard.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fluxohq/fluxo/internal/engine/simulation"
	"github.com/fluxohq/fluxo/internal/services"
)

// Handler handles analytics HTTP requests
type Handler struct {
	analytics *services.AnalyticsService
	log       zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(analytics *services.AnalyticsService, log zerolog.Logger) *Handler {
	return &Handler{
		analytics: analytics,
		log:       log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleCashFlow handles GET /api/analytics/{tenantID}/cashflow
func (h *Handler) HandleCashFlow(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	result, err := h.analytics.CashFlow(r.Context(), tenantID, asOf, days)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to project cash flow")
		http.Error(w, "Failed to project cash flow", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result, asOf))
}

// HandleAlerts handles GET /api/analytics/{tenantID}/alerts
func (h *Handler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	alerts, err := h.analytics.Alerts(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to generate alerts")
		http.Error(w, "Failed to generate alerts", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	}, asOf))
}

// HandleKPIs handles GET /api/analytics/{tenantID}/kpis
func (h *Handler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	metrics, err := h.analytics.KPIs(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to compute KPIs")
		http.Error(w, "Failed to compute KPIs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(metrics, asOf))
}

// HandleConcentration handles GET /api/analytics/{tenantID}/concentration
func (h *Handler) HandleConcentration(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	clients, err := h.analytics.ClientConcentration(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to analyze client concentration")
		http.Error(w, "Failed to analyze client concentration", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"clients": clients,
		"count":   len(clients),
	}, asOf))
}

// HandleDRE handles GET /api/analytics/{tenantID}/dre
// The by query parameter selects the grouping: cost_center (default) or category.
func (h *Handler) HandleDRE(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	by := r.URL.Query().Get("by")
	if by == "" {
		by = "cost_center"
	}

	var lines interface{}
	var err error
	switch by {
	case "cost_center":
		lines, err = h.analytics.DREByCostCenter(r.Context(), tenantID)
	case "category":
		lines, err = h.analytics.DREByCategory(r.Context(), tenantID)
	default:
		http.Error(w, "by must be cost_center or category", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Str("by", by).Msg("Failed to build result statement")
		http.Error(w, "Failed to build result statement", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"by":    by,
		"lines": lines,
	}, asOf))
}

// HandleSimulate handles POST /api/analytics/{tenantID}/simulate
func (h *Handler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	var params simulation.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.analytics.Simulate(r.Context(), tenantID, asOf, params)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to run simulation")
		http.Error(w, "Failed to run simulation", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(result, asOf))
}

// HandleInsights handles GET /api/analytics/{tenantID}/insights
func (h *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	insights, err := h.analytics.Insights(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to generate insights")
		http.Error(w, "Failed to generate insights", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
	}, asOf))
}

// HandleDashboard handles GET /api/analytics/{tenantID}/dashboard
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	dashboard, err := h.analytics.Dashboard(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to assemble dashboard")
		http.Error(w, "Failed to assemble dashboard", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(dashboard, asOf))
}

// HandleRefresh handles POST /api/analytics/{tenantID}/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	asOf := h.asOf(r)

	dashboard, err := h.analytics.Refresh(r.Context(), tenantID, asOf)
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("Failed to refresh dashboard")
		http.Error(w, "Failed to refresh dashboard", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(dashboard, asOf))
}

// asOf resolves the reference date from the as_of query parameter, defaulting
// to today in UTC. Malformed values also fall back to today; back-dated
// analysis is a convenience, not a contract.
func (h *Handler) asOf(r *http.Request) time.Time {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return today()
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		h.log.Warn().Str("as_of", raw).Msg("Ignoring malformed as_of parameter")
		return today()
	}
	return parsed
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func envelope(data interface{}, asOf time.Time) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"as_of":     asOf.Format("2006-01-02"),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
