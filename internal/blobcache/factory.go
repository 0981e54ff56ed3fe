// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package blobcache

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// New creates a cache for the given backend. db is required for BackendBadger
// and ignored otherwise.
//
// Example:
//
//	// In-memory (default)
//	c, _ := blobcache.New(blobcache.BackendMemory, nil)
//
//	// Durable
//	c, err := blobcache.New(blobcache.BackendBadger, db)
func New(backend Backend, db *badger.DB) (BlobCache, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryCache(), nil
	case BackendBadger:
		if db == nil {
			return nil, fmt.Errorf("badger cache backend requires an open database")
		}
		return NewBadgerCache(db), nil
	default:
		return nil, fmt.Errorf("invalid cache backend: %s (must be 'memory' or 'badger')", backend)
	}
}

// OpenBadger opens a BadgerDB at path with logging routed away from stderr.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}
