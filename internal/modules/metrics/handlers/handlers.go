// Package handlers provides HTTP handlers for metric and score queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/services"
)

// Handler handles metric HTTP requests.
type Handler struct {
	analysis *services.AnalysisService
	defaults services.Defaults
	log      zerolog.Logger
}

// NewHandler creates a new metrics handler.
func NewHandler(analysis *services.AnalysisService, defaults services.Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		analysis: analysis,
		defaults: defaults,
		log:      log.With().Str("handler", "metrics").Logger(),
	}
}

// HandleGetMetrics handles GET /api/metrics. Returns the full metric set:
// period returns, rolling return, volatility, sharpe, scores and scoring
// diagnostics.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	req, err := services.RequestFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.analysis.Run(req)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.writeNoData(w)
			return
		}
		h.log.Error().Err(err).Msg("Metric computation failed")
		h.writeError(w, http.StatusInternalServerError, "Metric computation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": payload,
		"metadata": map[string]interface{}{
			"groups":    req.Groups,
			"window":    req.Window,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetScores handles GET /api/scores. Returns only the composite score
// matrix plus diagnostics.
func (h *Handler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	req, err := services.RequestFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.analysis.Run(req)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.writeNoData(w)
			return
		}
		h.log.Error().Err(err).Msg("Score computation failed")
		h.writeError(w, http.StatusInternalServerError, "Score computation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"scores":      payload.Scores,
			"diagnostics": payload.Diagnostics,
		},
		"metadata": map[string]interface{}{
			"groups":    req.Groups,
			"window":    req.Window,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeNoData reports the explicit "no data" condition so the UI can show a
// message instead of an error page.
func (h *Handler) writeNoData(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":    nil,
		"no_data": true,
		"message": "No valid observations available for the requested parameters",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
