// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import "errors"

// Error codes returned in the APIError envelope.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeImageNotReady      = "IMAGE_NOT_READY"
	CodeImageFailed        = "IMAGE_FAILED"
	CodeImageNotFailed     = "IMAGE_NOT_FAILED"
	CodeCacheDisabled      = "CACHE_DISABLED"
	CodeCacheError         = "CACHE_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeMountLimit         = "MOUNT_LIMIT_REACHED"
	CodeInternal           = "INTERNAL_ERROR"
)

var (
	// ErrImageNotFound is returned when no mounted image has the requested ID.
	ErrImageNotFound = errors.New("image not found")

	// ErrMountLimit is returned when the mount table is full.
	ErrMountLimit = errors.New("mount limit reached")
)
