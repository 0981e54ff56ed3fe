// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package blobcache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

// KeyPrefix namespaces image entries inside a shared store.
const KeyPrefix = "img_"

// ErrNotFound is returned by Get when the key is absent or logically expired.
var ErrNotFound = errors.New("blobcache: entry not found")

// Key derives the cache key for an image source URL.
func Key(src string) string {
	return KeyPrefix + src
}

// IsImageKey reports whether key belongs to the image namespace.
func IsImageKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix)
}

// BlobCache is the cache contract consumed by the loader.
//
// Implementations return ErrNotFound for misses. Any other error is a storage
// failure; the loader logs it and treats it as a miss.
type BlobCache interface {
	// Get returns the entry only if present and ExpiresAt > now.
	Get(ctx context.Context, key string) (*models.CacheEntry, error)

	// Set writes or overwrites key with ExpiresAt = now + ttl.
	Set(ctx context.Context, key, objectURL string, ttl time.Duration) error

	// PurgeExpired deletes every image entry whose ExpiresAt <= now and
	// returns the number removed.
	PurgeExpired(ctx context.Context) (int, error)
}

// Backend selects a BlobCache implementation.
type Backend string

const (
	// BackendMemory keeps entries in process memory (default).
	BackendMemory Backend = "memory"

	// BackendBadger persists entries in BadgerDB so they survive restarts.
	BackendBadger Backend = "badger"
)

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Verify interface implementations at compile time
var (
	_ BlobCache = (*MemoryCache)(nil)
	_ BlobCache = (*BadgerCache)(nil)
)
