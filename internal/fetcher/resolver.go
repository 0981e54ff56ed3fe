// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package fetcher

import (
	"context"
	"fmt"

	"github.com/tomtom215/imagegate/internal/models"
	"github.com/tomtom215/imagegate/internal/objecturl"
)

// Resolver serves object URLs from the local registry and everything else
// from the origin fetcher.
type Resolver struct {
	registry objecturl.Registry
	origin   Fetcher
}

// NewResolver creates a Resolver.
func NewResolver(registry objecturl.Registry, origin Fetcher) *Resolver {
	return &Resolver{registry: registry, origin: origin}
}

// Fetch loads url locally when it is an object URL, remotely otherwise.
func (r *Resolver) Fetch(ctx context.Context, url string) (*models.Blob, error) {
	if objecturl.IsObjectURL(url) {
		blob, err := r.registry.Resolve(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("resolve object url: %w", err)
		}
		return blob, nil
	}
	return r.origin.Fetch(ctx, url)
}

// Verify interface implementations at compile time
var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*BreakerFetcher)(nil)
	_ Fetcher = (*Resolver)(nil)
	_ Fetcher = FetcherFunc(nil)
)
