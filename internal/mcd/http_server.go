package mcd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcdist/mcdist/internal/estimator"
	"github.com/mcdist/mcdist/pkg/logger"
	"github.com/mcdist/mcdist/pkg/models"
)

// HTTPServer exposes the run store and executor as a JSON API
type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
}

// NewHTTPServer wires the API routes
func NewHTTPServer(store *RunStore, executor *RunExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)

	return s
}

// Handler returns the root handler
func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRuns handles /v1/runs endpoint
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id} and related endpoints
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/runs/{id}, /v1/runs/{id}:start, /v1/runs/{id}:stop,
	// /v1/runs/{id}/result or /v1/runs/{id}/metrics/timeseries
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	if strings.HasSuffix(path, ":start") {
		runID := strings.TrimSuffix(path, ":start")
		if r.Method == http.MethodPost {
			s.handleStartRun(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, ":stop") {
		runID := strings.TrimSuffix(path, ":stop")
		if r.Method == http.MethodPost {
			s.handleStopRun(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, "/result") {
		runID := strings.TrimSuffix(path, "/result")
		if r.Method == http.MethodGet {
			s.handleGetResult(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, "/metrics/timeseries") {
		runID := strings.TrimSuffix(path, "/metrics/timeseries")
		if r.Method == http.MethodGet {
			s.handleTimeSeries(w, r, runID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	// Otherwise it's GET /v1/runs/{id}
	if r.Method == http.MethodGet {
		s.handleGetRun(w, r, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateRun handles POST /v1/runs
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RunID string    `json:"run_id,omitempty"`
		Input *RunInput `json:"input"`
		Start bool      `json:"start,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Input == nil {
		s.writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	req.Input.ApplyDefaults(s.Executor.defaults)
	if err := req.Input.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Create(req.RunID, req.Input)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "already exists"):
			s.writeError(w, http.StatusConflict, err.Error())
		case strings.Contains(err.Error(), "cannot contain"):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID,
		"method", rec.Input.Method, "samples", rec.Input.Samples)

	if req.Start {
		if rec, err = s.Executor.Start(rec.Run.ID); err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run": rec.Run,
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var statusFilter models.RunStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		statusFilter = parseRunStatus(statusStr)
		if statusFilter == "" {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+statusStr)
			return
		}
	}

	runs := s.store.ListFiltered(limit, offset, statusFilter)

	runsJSON := make([]*models.Run, 0, len(runs))
	for _, rec := range runs {
		runsJSON = append(runsJSON, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runsJSON,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// parseRunStatus maps a status string to a RunStatus, "" when unknown
func parseRunStatus(statusStr string) models.RunStatus {
	switch strings.ToLower(statusStr) {
	case "pending":
		return models.RunStatusPending
	case "running":
		return models.RunStatusRunning
	case "completed":
		return models.RunStatusCompleted
	case "failed":
		return models.RunStatusFailed
	case "cancelled":
		return models.RunStatusCancelled
	default:
		return ""
	}
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":   rec.Run,
		"input": rec.Input,
	})
}

// handleStartRun handles POST /v1/runs/{id}:start
func (s *HTTPServer) handleStartRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Start(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunTerminal):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run started (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRunIDMissing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run": updated.Run,
	})
}

// handleGetResult handles GET /v1/runs/{id}/result
func (s *HTTPServer) handleGetResult(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	if rec.Run.Result == nil {
		s.writeError(w, http.StatusPreconditionFailed, "result not available")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"result":     rec.Run.Result,
		"analytical": estimator.Exact,
	})
}

// handleTimeSeries handles GET /v1/runs/{id}/metrics/timeseries
func (s *HTTPServer) handleTimeSeries(w http.ResponseWriter, r *http.Request, runID string) {
	if _, ok := s.store.Get(runID); !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}

	collector, ok := s.store.GetCollector(runID)
	if !ok {
		s.writeError(w, http.StatusPreconditionFailed, "time-series metrics not available")
		return
	}

	var metricNames []string
	if metricName := r.URL.Query().Get("metric"); metricName != "" {
		metricNames = []string{metricName}
	} else {
		metricNames = collector.GetMetricNames()
	}

	series := make([]map[string]any, 0, len(metricNames))
	for _, name := range metricNames {
		points := collector.GetTimeSeries(name)
		if len(points) == 0 {
			continue
		}
		pointsJSON := make([]map[string]any, 0, len(points))
		for _, point := range points {
			pointsJSON = append(pointsJSON, map[string]any{
				"timestamp": point.Timestamp.Format(time.RFC3339Nano),
				"value":     point.Value,
			})
		}
		series = append(series, map[string]any{
			"metric":      name,
			"points":      pointsJSON,
			"aggregation": collector.GetAggregation(name),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"series": series,
	})
}

// Helper functions

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
