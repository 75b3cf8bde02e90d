package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all group registry routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/groups", h.HandleGetGroups)
}
