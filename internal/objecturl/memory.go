// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package objecturl

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

type memoryObject struct {
	blob      *models.Blob
	expiresAt time.Time
}

// MemoryRegistry keeps blobs in process memory.
type MemoryRegistry struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// WithClock overrides the time source used for expiry decisions.
func (r *MemoryRegistry) WithClock(now func() time.Time) *MemoryRegistry {
	if now != nil {
		r.now = now
	}
	return r
}

// Create implements Registry.
func (r *MemoryRegistry) Create(ctx context.Context, blob *models.Blob, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, id := newHandle()
	r.mu.Lock()
	r.objects[id] = memoryObject{blob: blob, expiresAt: r.now().Add(ttl)}
	r.mu.Unlock()
	return url, nil
}

// Resolve implements Registry.
func (r *MemoryRegistry) Resolve(ctx context.Context, objectURL string) (*models.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := parseHandle(objectURL)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	obj, ok := r.objects[id]
	r.mu.RUnlock()

	if !ok || !obj.expiresAt.After(r.now()) {
		return nil, ErrNotFound
	}
	return obj.blob, nil
}

// Revoke implements Registry.
func (r *MemoryRegistry) Revoke(_ context.Context, objectURL string) error {
	id, err := parseHandle(objectURL)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.objects, id)
	r.mu.Unlock()
	return nil
}

// Sweep implements Registry.
func (r *MemoryRegistry) Sweep(_ context.Context) (int, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, obj := range r.objects {
		if !obj.expiresAt.After(now) {
			delete(r.objects, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored objects.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
