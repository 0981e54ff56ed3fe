// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package objecturl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/imagegate/internal/models"
)

// objectKeyPrefix namespaces blob rows in a database shared with the cache.
const objectKeyPrefix = "object:"

// BadgerRegistry stores blobs in BadgerDB so object URLs written to a durable
// cache still resolve after a restart. Expiry uses Badger's native entry TTL.
type BadgerRegistry struct {
	db *badger.DB
}

// NewBadgerRegistry creates a registry on an open database.
func NewBadgerRegistry(db *badger.DB) *BadgerRegistry {
	return &BadgerRegistry{db: db}
}

// Create implements Registry.
func (r *BadgerRegistry) Create(ctx context.Context, blob *models.Blob, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshal blob: %w", err)
	}

	url, id := newHandle()
	err = r.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(objectKeyPrefix+id), data).WithTTL(ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return url, nil
}

// Resolve implements Registry.
func (r *BadgerRegistry) Resolve(ctx context.Context, objectURL string) (*models.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := parseHandle(objectURL)
	if err != nil {
		return nil, err
	}

	var blob models.Blob
	err = r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(objectKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get blob: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &blob)
		})
	})
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Revoke implements Registry.
func (r *BadgerRegistry) Revoke(_ context.Context, objectURL string) error {
	id, err := parseHandle(objectURL)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(objectKeyPrefix + id))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete blob: %w", err)
		}
		return nil
	})
}

// Sweep implements Registry. Badger expires rows on its own, so this only
// triggers value-log garbage collection and reports zero removals.
func (r *BadgerRegistry) Sweep(_ context.Context) (int, error) {
	err := r.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
		return 0, fmt.Errorf("value log gc: %w", err)
	}
	return 0, nil
}
