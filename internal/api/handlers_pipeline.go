// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/showroom/internal/database"
	"github.com/tomtom215/showroom/internal/logging"
	"github.com/tomtom215/showroom/internal/models"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/runstore"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// PipelineStatusResponse is returned by GET /api/v1/pipeline/status.
type PipelineStatusResponse struct {
	Pipeline  recommend.PipelineStatus `json:"pipeline"`
	Stats     *database.Stats          `json:"stats,omitempty"`
	LatestRun *recommend.RunReport     `json:"latest_run,omitempty"`
}

// RunsResponse is returned by GET /api/v1/pipeline/runs.
type RunsResponse struct {
	Runs  []*recommend.RunReport `json:"runs"`
	Count int                    `json:"count"`
}

// TriggerRun queues a manual pipeline run. A request arriving while a run
// is already queued is coalesced into it.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.trigger == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "pipeline scheduler is not running", nil)
		return
	}

	resp := models.TriggerResponse{Accepted: h.trigger.Trigger()}
	if resp.Accepted {
		resp.Message = "Pipeline run queued."
	} else {
		resp.Message = "A pipeline run is already queued."
	}

	logging.Ctx(r.Context()).Info().Bool("accepted", resp.Accepted).Msg("Manual pipeline run requested")
	respondSuccess(w, r, http.StatusAccepted, resp, start)
}

// PipelineStatus returns in-process pipeline state, table sizes and the
// latest persisted run.
func (h *Handler) PipelineStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.pipeline == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "pipeline is not configured", nil)
		return
	}

	resp := PipelineStatusResponse{Pipeline: h.pipeline.Status()}

	if h.store != nil {
		stats, err := h.store.GetStats(r.Context())
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to load table statistics", err)
			return
		}
		resp.Stats = stats
	}

	resp.LatestRun = resp.Pipeline.LastRun
	if resp.LatestRun == nil && h.runs != nil {
		latest, err := h.runs.Latest(r.Context())
		switch {
		case err == nil:
			resp.LatestRun = latest
		case !errors.Is(err, runstore.ErrNotFound):
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to load latest run")
		}
	}

	respondSuccess(w, r, http.StatusOK, resp, start)
}

// ListRuns returns persisted run reports, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.runs == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "run history is not configured", nil)
		return
	}

	limit := getIntParam(r, "limit", defaultRunsLimit)
	if limit < 1 || limit > maxRunsLimit {
		respondError(w, r, http.StatusBadRequest, models.CodeValidation, "limit must be between 1 and 100", nil)
		return
	}

	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to load run history", err)
		return
	}
	if runs == nil {
		runs = []*recommend.RunReport{}
	}

	respondSuccess(w, r, http.StatusOK, RunsResponse{Runs: runs, Count: len(runs)}, start)
}

// GetRun returns one persisted run report.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.runs == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "run history is not configured", nil)
		return
	}

	runID := chi.URLParam(r, "runID")
	report, err := h.runs.Get(r.Context(), runID)
	if errors.Is(err, runstore.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "run not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase, "failed to load run", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, report, start)
}
