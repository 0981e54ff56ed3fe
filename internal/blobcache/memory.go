// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package blobcache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

// MemoryCache is a thread-safe in-memory BlobCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	now     func() time.Time

	statsMu sync.RWMutex
	stats   Stats
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryCache creates an empty in-memory cache.
//
// Unlike a general-purpose TTL cache it starts no background goroutine:
// expired entries are hidden on read and removed by PurgeExpired.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]models.CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()
	return c
}

// Get retrieves a non-expired entry.
//
// An expired entry is deleted on the spot and counted as a miss and an
// eviction.
func (c *MemoryCache) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, ErrNotFound
	}

	if entry.IsExpired(c.now()) {
		c.mu.Lock()
		// Only delete if no writer replaced it meanwhile.
		if current, ok := c.entries[key]; ok && current.ExpiresAt.Equal(entry.ExpiresAt) {
			delete(c.entries, key)
			c.recordEviction(1)
		}
		c.mu.Unlock()
		c.recordMiss()
		return nil, ErrNotFound
	}

	c.recordHit()
	return &entry, nil
}

// Set stores objectURL under key with ExpiresAt = now + ttl.
func (c *MemoryCache) Set(ctx context.Context, key, objectURL string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = models.CacheEntry{
		Key:       key,
		ObjectURL: objectURL,
		ExpiresAt: c.now().Add(ttl),
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.TotalKeys = total
	c.statsMu.Unlock()
	return nil
}

// PurgeExpired removes every expired entry in the image namespace.
func (c *MemoryCache) PurgeExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := c.now()
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if !IsImageKey(key) {
			continue
		}
		if entry.IsExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.statsMu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = total
	c.stats.LastCleanup = now
	c.statsMu.Unlock()

	return removed, nil
}

// Len returns the number of physically stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache counters.
func (c *MemoryCache) GetStats() Stats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *MemoryCache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (c *MemoryCache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *MemoryCache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}

func (c *MemoryCache) recordEviction(n int64) {
	c.statsMu.Lock()
	c.stats.Evictions += n
	c.statsMu.Unlock()
}
