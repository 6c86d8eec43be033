// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/showroom/internal/models"
)

// Health reports database connectivity and pipeline state. It always
// answers 200; Status is "degraded" when the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbHealthy := h.store != nil && h.store.Ping(r.Context()) == nil

	health := models.HealthResponse{
		Status:          "healthy",
		Version:         h.version,
		DatabaseHealthy: dbHealthy,
		Uptime:          time.Since(h.startTime).Seconds(),
	}
	if !dbHealthy {
		health.Status = "degraded"
	}
	if h.pipeline != nil {
		st := h.pipeline.Status()
		health.PipelineRunning = st.Running
		health.LastSuccessAt = st.LastSuccessAt
	}

	respondSuccess(w, r, http.StatusOK, health, start)
}
