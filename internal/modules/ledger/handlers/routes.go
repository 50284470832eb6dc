package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger/{tenantID}", func(r chi.Router) {
		r.Get("/payables", h.HandleListPayables)
		r.Post("/payables", h.HandleCreatePayable)
		r.Get("/receivables", h.HandleListReceivables)
		r.Post("/receivables", h.HandleCreateReceivable)
		r.Put("/clients", h.HandleUpsertClient)
		r.Put("/cost-centers", h.HandleUpsertCostCenter)
		r.Put("/categories", h.HandleUpsertCategory)
		r.Get("/balance", h.HandleGetBalance)
		r.Post("/balance", h.HandleRecordBalance)
	})
}
