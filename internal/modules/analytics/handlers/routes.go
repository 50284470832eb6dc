package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics/{tenantID}", func(r chi.Router) {
		r.Get("/cashflow", h.HandleCashFlow)
		r.Get("/alerts", h.HandleAlerts)
		r.Get("/kpis", h.HandleKPIs)
		r.Get("/concentration", h.HandleConcentration)
		r.Get("/dre", h.HandleDRE)
		r.Post("/simulate", h.HandleSimulate)
		r.Get("/insights", h.HandleInsights)
		r.Get("/dashboard", h.HandleDashboard)
		r.Post("/refresh", h.HandleRefresh)
	})
}
