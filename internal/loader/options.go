// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

type mountOptions struct {
	policy       Policy
	cacheTTL     time.Duration
	onFinalError func(models.LoadState)
}

// MountOption overrides a loader default for one mount.
type MountOption func(*mountOptions)

// WithMaxRetries sets the number of automatic retries.
func WithMaxRetries(n int) MountOption {
	return func(o *mountOptions) { o.policy.MaxRetries = n }
}

// WithBaseDelay sets the first retry delay.
func WithBaseDelay(d time.Duration) MountOption {
	return func(o *mountOptions) { o.policy.BaseDelay = d }
}

// WithCacheTTL sets how long a successful load stays cached.
func WithCacheTTL(d time.Duration) MountOption {
	return func(o *mountOptions) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// OnFinalError registers a callback invoked each time the image enters the
// failed state. It runs on a background goroutine with the failed snapshot.
func OnFinalError(fn func(models.LoadState)) MountOption {
	return func(o *mountOptions) { o.onFinalError = fn }
}
