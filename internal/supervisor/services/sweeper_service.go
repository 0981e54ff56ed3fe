// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package services

import (
	"context"
	"time"

	"github.com/tomtom215/imagegate/internal/logging"
)

// Sweeper purges expired cache entries. Satisfied by *blobcache.Sweeper.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// CacheSweeperService purges expired cache entries on a fixed interval.
//
// The loader already purges once per session; this keeps long-running
// processes from accumulating expired rows between sessions. Sweep errors
// are logged by the sweeper and never stop the service.
type CacheSweeperService struct {
	sweeper  Sweeper
	interval time.Duration
	name     string
}

// NewCacheSweeperService creates a sweeper service. A non-positive interval
// defaults to 10 minutes.
func NewCacheSweeperService(sweeper Sweeper, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheSweeperService{
		sweeper:  sweeper,
		interval: interval,
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", s.interval).Msg("Cache sweeper started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.sweeper.Sweep(ctx)
			if err != nil {
				continue
			}
			if removed > 0 {
				logging.Info().Int("removed", removed).Msg("Expired cache entries purged")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor events.
func (s *CacheSweeperService) String() string {
	return s.name
}
