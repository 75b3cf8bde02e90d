// Package handlers provides HTTP handlers for the group registry.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/modules/universe"
)

// Handler handles group registry HTTP requests.
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new universe handler.
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "universe").Logger(),
	}
}

// HandleGetGroups handles GET /api/groups. Returns the fixed group registry
// in ascending ID order.
func (h *Handler) HandleGetGroups(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": universe.All(),
		"metadata": map[string]interface{}{
			"count":     len(universe.All()),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
