// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "IMAGE_NOT_READY",
//	    "message": "Image is still loading",
//	    "details": {"status": "loading", "attempt": 2}
//	  },
//	  "metadata": {"timestamp": "2026-10-16T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Fields:
//   - Code: Machine-readable error code (e.g., "VALIDATION_ERROR", "IMAGE_FAILED")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, load state, etc.)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MountRequest is the body of POST /api/v1/images.
type MountRequest struct {
	Src             string `json:"src" validate:"required,max=4096,httpurl"`
	MaxRetries      *int   `json:"max_retries,omitempty" validate:"omitempty,min=0,max=100"`
	BaseDelayMS     *int   `json:"base_delay_ms,omitempty" validate:"omitempty,min=1,max=600000"`
	CacheTTLSeconds *int   `json:"cache_ttl_seconds,omitempty" validate:"omitempty,min=1,max=604800"`
}

// SourceChangeRequest is the body of PUT /api/v1/images/{id}/source.
type SourceChangeRequest struct {
	Src string `json:"src" validate:"required,max=4096,httpurl"`
}

// MountResponse is returned after an image has been mounted.
type MountResponse struct {
	ID    string    `json:"id"`
	State LoadState `json:"state"`
}

// PurgeResponse reports the outcome of a cache sweep.
type PurgeResponse struct {
	Removed int `json:"removed"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	CacheBackend  string  `json:"cache_backend"`
	CacheEnabled  bool    `json:"cache_enabled"`
	MountedImages int     `json:"mounted_images"`
	Uptime        float64 `json:"uptime_seconds"`
}
