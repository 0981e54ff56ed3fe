// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/imagegate/internal/middleware"
)

// NewRouter builds the chi router for h.
//
// Global middleware order: request ID (with logging context), real IP, panic
// recovery, CORS, prometheus. The /api/v1 routes are additionally rate
// limited per client IP; /metrics and health checks are not.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.Route("/images", func(r chi.Router) {
				r.Post("/", h.MountImage)
				r.Get("/proxy", h.ProxyImage)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetImage)
					r.Delete("/", h.DeleteImage)
					r.Get("/content", h.GetImageContent)
					r.Post("/retry", h.RetryImage)
					r.Put("/source", h.ChangeSource)
				})
			})

			r.Post("/cache/purge", h.PurgeCache)
		})
	})

	return r
}
