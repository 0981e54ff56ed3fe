// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package services

import (
	"context"

	"github.com/tomtom215/imagegate/internal/logging"
)

// Closer stops background image loading. Satisfied by *loader.Loader.
type Closer interface {
	Close()
}

// LoaderService ties the image loader's lifetime to the supervisor tree.
//
// It idles until shutdown, then unmounts images through drain (cancelling
// their pending retries) and closes the loader, which waits for in-flight
// cache writes.
type LoaderService struct {
	loader Closer
	drain  func() int
	name   string
}

// NewLoaderService creates a loader lifecycle service. drain may be nil.
func NewLoaderService(loader Closer, drain func() int) *LoaderService {
	return &LoaderService{
		loader: loader,
		drain:  drain,
		name:   "image-loader",
	}
}

// Serve implements suture.Service.
func (s *LoaderService) Serve(ctx context.Context) error {
	<-ctx.Done()

	unmounted := 0
	if s.drain != nil {
		unmounted = s.drain()
	}
	s.loader.Close()

	logging.Info().Int("unmounted", unmounted).Msg("Image loader stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor events.
func (s *LoaderService) String() string {
	return s.name
}
