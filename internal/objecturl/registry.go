// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

// Package objecturl registers fetched image bytes under opaque, locally
// resolvable handles of the form "blob:imagegate/<uuid>".
//
// A handle is what the blob cache stores: resolving it never touches the
// network. Handles expire with the cache entry that references them and can be
// revoked explicitly.
package objecturl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/imagegate/internal/models"
)

// Scheme is the prefix of every object URL.
const Scheme = "blob:imagegate/"

// ErrNotFound is returned when a handle is unknown, revoked, or expired.
var ErrNotFound = errors.New("objecturl: object not found")

// ErrInvalidURL is returned for strings that are not object URLs.
var ErrInvalidURL = errors.New("objecturl: not an object url")

// Registry stores blobs behind object URLs.
type Registry interface {
	// Create stores blob and returns a new handle valid for ttl.
	Create(ctx context.Context, blob *models.Blob, ttl time.Duration) (string, error)

	// Resolve returns the blob behind a handle.
	Resolve(ctx context.Context, objectURL string) (*models.Blob, error)

	// Revoke releases a handle. Revoking an unknown handle is not an error.
	Revoke(ctx context.Context, objectURL string) error

	// Sweep drops expired objects and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// IsObjectURL reports whether s is an object URL.
func IsObjectURL(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// newHandle generates a fresh object URL.
func newHandle() (url, id string) {
	id = uuid.New().String()
	return Scheme + id, id
}

// parseHandle extracts the object id from an object URL.
func parseHandle(objectURL string) (string, error) {
	if !IsObjectURL(objectURL) {
		return "", ErrInvalidURL
	}
	id := strings.TrimPrefix(objectURL, Scheme)
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidURL
	}
	return id, nil
}

// Verify interface implementations at compile time
var (
	_ Registry = (*MemoryRegistry)(nil)
	_ Registry = (*BadgerRegistry)(nil)
)
