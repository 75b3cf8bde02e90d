package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/charts/{kind}", h.HandleGetChart)
	r.Get("/api/charts/{kind}/series", h.HandleGetChartSeries)
}
