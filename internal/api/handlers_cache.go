// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"net/http"

	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/models"
)

// PurgeCache handles POST /api/v1/cache/purge.
func (h *Handler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	if h.sweeper == nil || !h.loader.CacheEnabled() {
		respondError(w, http.StatusServiceUnavailable, CodeCacheDisabled, "Image cache is disabled", nil)
		return
	}

	removed, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeCacheError, "Cache purge failed", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("removed", removed).Msg("Cache purged on request")
	respondData(w, http.StatusOK, models.PurgeResponse{Removed: removed})
}
