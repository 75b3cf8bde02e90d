// Package handlers provides HTTP handlers for rendered chart images.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/charts"
	"github.com/quantrove/capscope/internal/services"
)

// chartSpec maps a metric kind to its presentation.
type chartSpec struct {
	title      string
	yLabel     string
	percentage bool
}

var chartSpecs = map[string]chartSpec{
	"period-return": {title: "Period Returns", yLabel: "%", percentage: true},
	"return":        {title: "Rolling Annual Return", yLabel: "%", percentage: true},
	"volatility":    {title: "Rolling Volatility (annualized)", yLabel: "%", percentage: true},
	"sharpe":        {title: "Rolling Sharpe Ratio", yLabel: "ratio"},
	"score":         {title: "Composite Score", yLabel: "0-100"},
}

// Handler handles chart HTTP requests.
type Handler struct {
	analysis *services.AnalysisService
	charts   *charts.Service
	defaults services.Defaults
	log      zerolog.Logger
}

// NewHandler creates a new charts handler.
func NewHandler(
	analysis *services.AnalysisService,
	chartsSvc *charts.Service,
	defaults services.Defaults,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		analysis: analysis,
		charts:   chartsSvc,
		defaults: defaults,
		log:      log.With().Str("handler", "charts").Logger(),
	}
}

// HandleGetChart handles GET /api/charts/{kind}. Renders one comparative
// line chart as PNG.
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	spec, ok := chartSpecs[kind]
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Unknown chart kind: "+kind)
		return
	}

	req, err := services.RequestFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matrix, err := h.analysis.MatrixFor(req, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.writeError(w, http.StatusNotFound, "No data available for the requested parameters")
			return
		}
		h.log.Error().Err(err).Str("kind", kind).Msg("Chart data computation failed")
		h.writeError(w, http.StatusInternalServerError, "Chart computation failed")
		return
	}

	img, err := h.charts.RenderLine(matrix, charts.LineOptions{
		Title:      spec.title,
		YLabel:     spec.yLabel,
		Percentage: spec.percentage,
	})
	if err != nil {
		h.log.Error().Err(err).Str("kind", kind).Msg("Chart rendering failed")
		h.writeError(w, http.StatusInternalServerError, "Chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart image")
	}
}

// HandleGetChartSeries handles GET /api/charts/{kind}/series. Returns the
// chart data as JSON series for clients that render their own charts.
func (h *Handler) HandleGetChartSeries(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, ok := chartSpecs[kind]; !ok {
		h.writeError(w, http.StatusBadRequest, "Unknown chart kind: "+kind)
		return
	}

	req, err := services.RequestFromQuery(r.URL.Query(), h.defaults)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matrix, err := h.analysis.MatrixFor(req, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.writeJSON(w, http.StatusOK, map[string]interface{}{
				"data":    nil,
				"no_data": true,
				"message": "No valid observations available for the requested parameters",
			})
			return
		}
		h.log.Error().Err(err).Str("kind", kind).Msg("Chart data computation failed")
		h.writeError(w, http.StatusInternalServerError, "Chart computation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"kind":   kind,
			"series": h.charts.SeriesFrom(matrix),
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

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
