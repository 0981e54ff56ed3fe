// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package blobcache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/metrics"
)

// Sweeper runs PurgeExpired on a BlobCache, coalescing concurrent calls.
//
// Many images mounting at once each ask for a purge; only one scan runs and
// every caller receives its result.
type Sweeper struct {
	cache BlobCache
	group singleflight.Group

	// AfterSweep, if set, runs after every successful scan. The object-URL
	// registry hooks in here to drop blobs whose entries are gone.
	AfterSweep func(ctx context.Context, removed int)
}

// NewSweeper creates a Sweeper for cache.
func NewSweeper(cache BlobCache) *Sweeper {
	return &Sweeper{cache: cache}
}

// Sweep purges expired entries. Errors are logged and returned; callers on
// the load path ignore them.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	v, err, shared := s.group.Do("purge", func() (interface{}, error) {
		start := time.Now()
		removed, err := s.cache.PurgeExpired(ctx)
		metrics.RecordCacheSweep(time.Since(start), removed, err)
		if err != nil {
			return removed, err
		}
		if s.AfterSweep != nil {
			s.AfterSweep(ctx, removed)
		}
		return removed, nil
	})

	removed, _ := v.(int)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "blobcache").Msg("Cache sweep failed")
		return removed, err
	}

	logging.Ctx(ctx).Debug().
		Int("removed", removed).
		Bool("shared", shared).
		Str("component", "blobcache").
		Msg("Cache sweep completed")
	return removed, nil
}
