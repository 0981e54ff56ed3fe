// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"time"

	"github.com/tomtom215/imagegate/internal/blobcache"
	"github.com/tomtom215/imagegate/internal/loader"
)

// HandlerConfig holds API-level settings.
type HandlerConfig struct {
	// ProxyWaitTimeout bounds how long the proxy endpoint waits for an
	// image to load or fail.
	ProxyWaitTimeout time.Duration

	// MaxMounts caps the images mounted through POST /images. Zero means no
	// limit.
	MaxMounts int

	// CacheBackend is reported by the health endpoints.
	CacheBackend string
}

// Handler serves the image API.
type Handler struct {
	loader    *loader.Loader
	sweeper   *blobcache.Sweeper
	mounts    *mountTable
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a Handler. sweeper may be nil when caching is disabled.
func NewHandler(l *loader.Loader, sweeper *blobcache.Sweeper, cfg HandlerConfig) *Handler {
	if cfg.ProxyWaitTimeout <= 0 {
		cfg.ProxyWaitTimeout = 2 * time.Minute
	}
	return &Handler{
		loader:    l,
		sweeper:   sweeper,
		mounts:    newMountTable(cfg.MaxMounts),
		config:    cfg,
		startTime: time.Now(),
	}
}

// Shutdown unmounts every image mounted through the API and returns how many
// were dropped.
func (h *Handler) Shutdown() int {
	return h.mounts.unmountAll()
}
