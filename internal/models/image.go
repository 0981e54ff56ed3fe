// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package models

import "time"

// CacheEntry maps a derived image key to a locally resolvable object URL.
//
// ExpiresAt is always now+ttl at write time. A reader that observes
// ExpiresAt <= now must treat the entry as absent.
type CacheEntry struct {
	Key       string    `json:"key"`
	ObjectURL string    `json:"object_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the entry is logically expired at now.
func (e *CacheEntry) IsExpired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// Blob holds fetched image bytes.
type Blob struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// Size returns the number of bytes held by the blob.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}
