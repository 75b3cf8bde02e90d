package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantrove/capscope/internal/database"
	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	dataDB      *database.DB
	cacheDB     *database.DB
	historical  *historical.Service
	refreshJob  scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	dataDB, cacheDB *database.DB,
	historicalSvc *historical.Service,
	refreshJob scheduler.Job,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		dataDB:      dataDB,
		cacheDB:     cacheDB,
		historical:  historicalSvc,
		refreshJob:  refreshJob,
	}
}

// SystemStatusResponse represents the system status response.
type SystemStatusResponse struct {
	Status           string  `json:"status"` // "healthy" or "degraded"
	ObservationCount int     `json:"observation_count"`
	UptimeHours      float64 `json:"uptime_hours"`
	CPUPercent       float64 `json:"cpu_percent"`
	RAMPercent       float64 `json:"ram_percent"`
	LastChecked      string  `json:"last_checked"`
}

// DatabaseStatsResponse represents database statistics.
type DatabaseStatsResponse struct {
	Databases   []DBInfo `json:"databases"`
	TotalSizeMB float64  `json:"total_size_mb"`
	LastChecked string   `json:"last_checked"`
}

// DBInfo represents information about a single database.
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// HandleSystemStatus returns system status: dataset size, uptime, host load.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	status := "healthy"
	count, err := h.historical.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count observations")
		status = "degraded"
	}
	if count == 0 {
		status = "degraded"
	}

	cpuPercent, ramPercent := h.getSystemStats()

	h.writeJSON(w, http.StatusOK, SystemStatusResponse{
		Status:           status,
		ObservationCount: count,
		UptimeHours:      time.Since(h.startupTime).Hours(),
		CPUPercent:       cpuPercent,
		RAMPercent:       ramPercent,
		LastChecked:      time.Now().Format(time.RFC3339),
	})
}

// HandleDatabaseStats returns database statistics.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	databases := []DBInfo{}
	totalSizeMB := 0.0

	for _, db := range []*database.DB{h.dataDB, h.cacheDB} {
		if db == nil {
			continue
		}
		info, err := os.Stat(db.Path())
		if err != nil {
			continue
		}
		sizeMB := float64(info.Size()) / 1024 / 1024
		totalSizeMB += sizeMB
		databases = append(databases, DBInfo{
			Name:   db.Name(),
			Path:   db.Path(),
			SizeMB: sizeMB,
		})
	}

	h.writeJSON(w, http.StatusOK, DatabaseStatsResponse{
		Databases:   databases,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().Format(time.RFC3339),
	})
}

// HandleTriggerRefresh triggers a dataset refresh immediately.
// POST /api/system/refresh
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshJob == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "error",
			"message": "Refresh job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual dataset refresh triggered")

	if err := h.refreshJob.Run(); err != nil {
		h.log.Error().Err(err).Msg("Manual refresh failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Dataset refresh completed",
	})
}

// getSystemStats calculates CPU and RAM usage percentages. Uses a short
// sampling interval so the status endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response.
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
