// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package blobcache provides the TTL-bounded key to object-URL cache used by the
image loader.

# Overview

Every successfully loaded image is registered as an object URL and recorded
here under the key "img_" + src with an absolute expiry. A later mount of the
same source reads the entry and skips the network entirely.

Two backends implement BlobCache:
  - MemoryCache: process-local map guarded by sync.RWMutex
  - BadgerCache: durable rows in BadgerDB, surviving restarts within the TTL

# Expiry

Reads self-guard: Get reports ErrNotFound for any entry whose ExpiresAt is not
in the future, even if the row still physically exists. Physical removal is
done by PurgeExpired, which scans the "img_" namespace. The loader runs a purge
once per session; the supervisor additionally runs the Sweeper on an interval.

# Concurrency

All backends are safe for concurrent use. Writes to the same key are
last-write-wins. Concurrent sweeps are coalesced by Sweeper using singleflight.

# Usage Example

	c := blobcache.NewMemoryCache()
	key := blobcache.Key("https://cdn.example/x.jpg")
	if err := c.Set(ctx, key, objectURL, 5*time.Minute); err != nil {
	    // storage failure: callers treat this as a miss
	}
	entry, err := c.Get(ctx, key)
	if errors.Is(err, blobcache.ErrNotFound) {
	    // miss or expired
	}
*/
package blobcache
