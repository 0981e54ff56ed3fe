// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package blobcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/imagegate/internal/models"
)

// BadgerCache implements BlobCache using BadgerDB for durable storage.
// Entries survive process restarts for as long as their TTL allows.
//
// Rows are stored under the cache key itself (already "img_"-prefixed) so
// PurgeExpired can scan the namespace with a prefix iterator.
type BadgerCache struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerCache creates a new BadgerDB-backed cache.
// The caller owns db and is responsible for closing it.
func NewBadgerCache(db *badger.DB) *BadgerCache {
	return &BadgerCache{db: db, now: time.Now}
}

// WithClock overrides the time source used for expiry decisions.
func (c *BadgerCache) WithClock(now func() time.Time) *BadgerCache {
	if now != nil {
		c.now = now
	}
	return c
}

// Get retrieves a non-expired entry.
func (c *BadgerCache) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry models.CacheEntry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get cache entry: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}

	if entry.IsExpired(c.now()) {
		return nil, ErrNotFound
	}

	return &entry, nil
}

// Set writes or overwrites key with ExpiresAt = now + ttl.
//
// The row also carries a native Badger TTL slightly longer than the logical
// one, so abandoned rows disappear even if no sweep ever runs.
func (c *BadgerCache) Set(ctx context.Context, key, objectURL string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := models.CacheEntry{
		Key:       key,
		ObjectURL: objectURL,
		ExpiresAt: c.now().Add(ttl),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data).WithTTL(ttl + time.Minute)
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set cache entry: %w", err)
		}
		return nil
	})
}

// PurgeExpired removes all expired image entries.
func (c *BadgerCache) PurgeExpired(ctx context.Context) (int, error) {
	var expired [][]byte
	now := c.now()

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(KeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()

			var entry models.CacheEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				// Unreadable rows are garbage too.
				expired = append(expired, item.KeyCopy(nil))
				continue
			}

			if entry.IsExpired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache entries: %w", err)
	}

	count := 0
	for _, key := range expired {
		err := c.db.Update(func(txn *badger.Txn) error {
			// Re-check inside the write txn: a concurrent Set may have
			// refreshed the row since the scan.
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			var entry models.CacheEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err == nil && !entry.IsExpired(now) {
				return nil
			}
			count++
			return txn.Delete(key)
		})
		if err != nil {
			return count, fmt.Errorf("delete cache entry: %w", err)
		}
	}

	return count, nil
}

// Count returns the number of image rows currently stored.
func (c *BadgerCache) Count(ctx context.Context) (int, error) {
	count := 0

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(KeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
