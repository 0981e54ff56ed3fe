// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"sync"

	"github.com/tomtom215/imagegate/internal/loader"
)

// mountTable holds the images mounted through the API, keyed by ID.
type mountTable struct {
	mu     sync.RWMutex
	images map[string]*loader.Image
	limit  int
}

func newMountTable(limit int) *mountTable {
	return &mountTable{images: make(map[string]*loader.Image), limit: limit}
}

// put stores img under id, failing with ErrMountLimit when the table is full.
func (t *mountTable) put(id string, img *loader.Image) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit > 0 && len(t.images) >= t.limit {
		return ErrMountLimit
	}
	t.images[id] = img
	return nil
}

// full reports whether put would fail.
func (t *mountTable) full() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.limit > 0 && len(t.images) >= t.limit
}

func (t *mountTable) get(id string) (*loader.Image, error) {
	t.mu.RLock()
	img, ok := t.images[id]
	t.mu.RUnlock()
	if !ok {
		return nil, ErrImageNotFound
	}
	return img, nil
}

// remove drops id from the table and returns the image it held.
func (t *mountTable) remove(id string) (*loader.Image, error) {
	t.mu.Lock()
	img, ok := t.images[id]
	delete(t.images, id)
	t.mu.Unlock()
	if !ok {
		return nil, ErrImageNotFound
	}
	return img, nil
}

func (t *mountTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.images)
}

// unmountAll unmounts and forgets every image.
func (t *mountTable) unmountAll() int {
	t.mu.Lock()
	images := t.images
	t.images = make(map[string]*loader.Image)
	t.mu.Unlock()

	for _, img := range images {
		img.Unmount()
	}
	return len(images)
}
