// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package middleware provides HTTP middleware shared by the API router.

PrometheusMetrics instruments every request with the api_requests_total
counter, the api_request_duration_seconds histogram and the
api_active_requests gauge from the metrics package. Endpoint labels come
from the chi route pattern (for example /api/v1/images/{id}) rather than
the raw path, so per-image URLs do not explode label cardinality.

Usage:

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Get("/api/v1/images/{id}", h.GetImage)

CORS, rate limiting and request IDs are provided by the chi ecosystem
middleware configured in the api package.
*/
package middleware
