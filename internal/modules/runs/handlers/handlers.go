// Package handlers provides HTTP handlers for benchmark run operations.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantalab/qbench/internal/modules/charts"
	"github.com/quantalab/qbench/internal/modules/runs"
	"github.com/quantalab/qbench/internal/simulator"
)

// Handler handles benchmark run HTTP requests
type Handler struct {
	service    *runs.Service
	repository *runs.Repository
	charts     *charts.Service
	maxQubits  int
	log        zerolog.Logger
}

// NewHandler creates a new runs handler
func NewHandler(service *runs.Service, repository *runs.Repository, chartsService *charts.Service, maxQubits int, log zerolog.Logger) *Handler {
	return &Handler{
		service:    service,
		repository: repository,
		charts:     chartsService,
		maxQubits:  maxQubits,
		log:        log.With().Str("handler", "runs").Logger(),
	}
}

// HandleExecuteRun handles POST /api/runs
func (h *Handler) HandleExecuteRun(w http.ResponseWriter, r *http.Request) {
	var req runs.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Resource admission happens here, before any state is allocated
	if req.Qubits > h.maxQubits {
		http.Error(w, "Register size exceeds configured maximum", http.StatusUnprocessableEntity)
		return
	}
	if req.Label == "" {
		req.Label = "adhoc"
	}

	rep, err := h.service.Execute(r.Context(), req)
	if err != nil {
		var simErr *simulator.SimulationError
		if errors.As(err, &simErr) {
			h.log.Error().Err(err).Msg("Simulation rejected")
			http.Error(w, simErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.log.Error().Err(err).Msg("Benchmark run failed")
		http.Error(w, "Benchmark run failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": rep,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListRuns handles GET /api/runs
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	summaries, err := h.repository.List(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list run history")
		http.Error(w, "Failed to list run history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": summaries,
		"metadata": map[string]interface{}{
			"count":     len(summaries),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetRun handles GET /api/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	rep, err := h.repository.Get(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": rep})
}

// HandleGetRunHistogram handles GET /api/runs/{id}/histogram
func (h *Handler) HandleGetRunHistogram(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	rep, err := h.repository.Get(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load run")
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.charts.Histogram(rep),
		"metadata": map[string]interface{}{
			"run_id": runID,
			"shots":  rep.Shots,
		},
	})
}

// writeJSON writes a JSON response with the given status code
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
