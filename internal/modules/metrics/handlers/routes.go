package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all metric routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/metrics", h.HandleGetMetrics)
	r.Get("/api/scores", h.HandleGetScores)
}
