// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Status is the load status of a mounted image.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Label returns the dashboard label (Indonesian UI) for the status.
func (s Status) Label() string {
	switch s {
	case StatusIdle:
		return "Menunggu"
	case StatusLoading:
		return "Memuat"
	case StatusLoaded:
		return "Dimuat"
	case StatusFailed:
		return "Gagal"
	}
	return s.String()
}

// IsTerminal reports whether the status is stable until the source changes.
func (s Status) IsTerminal() bool {
	return s == StatusLoaded || s == StatusFailed
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a wire name into a Status.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "idle":
		return StatusIdle, nil
	case "loading":
		return StatusLoading, nil
	case "loaded":
		return StatusLoaded, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusIdle, fmt.Errorf("unknown status %q", name)
	}
}

// LoadState is a snapshot of one mounted image.
//
// Src is the source the mount was created with; CurrentSrc is what the
// display primitive was last asked to load (the cached object URL on a cache
// hit, or Src with a cache-busting parameter on retries).
type LoadState struct {
	Src        string `json:"src"`
	CurrentSrc string `json:"current_src"`
	Status     Status `json:"status"`
	Label      string `json:"label"`
	Attempt    int    `json:"attempt"`
	MaxRetries int    `json:"max_retries"`
	FromCache  bool   `json:"from_cache"`
	LastError  string `json:"last_error,omitempty"`

	// ShowPlaceholder is true while retries are in progress for a
	// non-cached image; ShowFailureOverlay is true once the image failed.
	ShowPlaceholder    bool `json:"show_placeholder"`
	ShowFailureOverlay bool `json:"show_failure_overlay"`
}
