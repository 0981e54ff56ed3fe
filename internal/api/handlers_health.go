// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

// HealthLive handles GET /api/v1/health/live. It reports healthy whenever
// the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, h.healthStatus("healthy"))
}

// HealthReady handles GET /api/v1/health/ready. The service is ready while
// the loader accepts new mounts.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if h.loader.Closed() {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     h.healthStatus("shutting_down"),
			Metadata: models.Metadata{Timestamp: time.Now()},
			Error: &models.APIError{
				Code:    CodeServiceUnavailable,
				Message: "Loader is shutting down",
			},
		})
		return
	}
	respondData(w, http.StatusOK, h.healthStatus("ready"))
}

func (h *Handler) healthStatus(status string) models.HealthStatus {
	backend := h.config.CacheBackend
	if !h.loader.CacheEnabled() {
		backend = "none"
	}
	return models.HealthStatus{
		Status:        status,
		CacheBackend:  backend,
		CacheEnabled:  h.loader.CacheEnabled(),
		MountedImages: h.loader.Mounted(),
		Uptime:        time.Since(h.startTime).Seconds(),
	}
}
