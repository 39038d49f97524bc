package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantalab/qbench/internal/database"
)

// SystemHandlers serves system monitoring endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	reportsDB *database.DB
	startedAt time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, reportsDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		dataDir:   dataDir,
		reportsDB: reportsDB,
		startedAt: time.Now().UTC(),
	}
}

// SystemHealthResponse is the payload for GET /api/system/health
type SystemHealthResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// SystemInfoResponse is the payload for GET /api/system/info
type SystemInfoResponse struct {
	DataDir         string  `json:"data_dir"`
	GoVersion       string  `json:"go_version"`
	NumCPU          int     `json:"num_cpu"`
	NumGoroutine    int     `json:"num_goroutine"`
	MemoryTotalMB   float64 `json:"memory_total_mb"`
	MemoryUsedMB    float64 `json:"memory_used_mb"`
	StartedAt       string  `json:"started_at"`
	ReportsDatabase string  `json:"reports_database"`
}

// HandleSystemHealth reports process and database health.
// GET /api/system/health
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	dbStatus := "ok"
	status := "ok"
	if err := h.reportsDB.HealthCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Reports database health check failed")
		dbStatus = "error"
		status = "degraded"
	}

	h.writeJSON(w, SystemHealthResponse{
		Status:        status,
		Database:      dbStatus,
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	})
}

// HandleSystemInfo reports static process and host information.
// GET /api/system/info
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	resp := SystemInfoResponse{
		DataDir:         h.dataDir,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
		StartedAt:       h.startedAt.Format(time.RFC3339),
		ReportsDatabase: h.reportsDB.Path(),
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		resp.MemoryTotalMB = float64(memStat.Total) / 1024 / 1024
		resp.MemoryUsedMB = float64(memStat.Used) / 1024 / 1024
	} else {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	h.writeJSON(w, resp)
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a 100ms sampling window to keep the endpoint responsive.
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

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
