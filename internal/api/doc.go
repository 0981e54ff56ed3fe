// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package api exposes the image loader over a chi REST API.

Clients mount an image by source URL and receive an ID. The image then loads
in the background with retries, backoff and cache-busting, and clients poll
its state or fetch its bytes once loaded:

	POST   /api/v1/images              mount {src, max_retries, base_delay_ms, cache_ttl_seconds}
	GET    /api/v1/images/{id}         current load state
	GET    /api/v1/images/{id}/content image bytes (409 until loaded)
	POST   /api/v1/images/{id}/retry   manual retry (409 unless failed)
	PUT    /api/v1/images/{id}/source  switch source, resetting attempts
	DELETE /api/v1/images/{id}         unmount
	GET    /api/v1/images/proxy?src=   mount, wait, stream bytes, unmount
	POST   /api/v1/cache/purge         purge expired cache entries
	GET    /api/v1/health/live         liveness
	GET    /api/v1/health/ready        readiness
	GET    /metrics                    prometheus

JSON responses use the models.APIResponse envelope. Errors carry a
machine-readable code (VALIDATION_ERROR, NOT_FOUND, IMAGE_NOT_READY,
IMAGE_FAILED, IMAGE_NOT_FAILED, CACHE_DISABLED, SERVICE_UNAVAILABLE,
MOUNT_LIMIT_REACHED).

Middleware (request IDs wired into the logging context, real IP, panic
recovery, CORS via go-chi/cors, per-IP rate limiting via go-chi/httprate and
prometheus instrumentation) is assembled in NewRouter.
*/
package api
