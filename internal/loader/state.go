// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"time"

	"github.com/tomtom215/imagegate/internal/models"
)

// State is the mutable part of one mount.
type State struct {
	Src        string
	CurrentSrc string
	Status     models.Status
	Attempt    int
	FromCache  bool
	LastError  string
}

// Policy holds the retry parameters of one mount.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// EventKind identifies what happened to a mount.
type EventKind int

const (
	// EventMount starts loading. CachedURL is set on a cache hit.
	EventMount EventKind = iota
	// EventSucceeded reports that CurrentSrc loaded.
	EventSucceeded
	// EventFailed reports that CurrentSrc failed to load. Err describes why.
	EventFailed
	// EventRetryFired reports that the backoff timer elapsed. At stamps the
	// cache-busting token.
	EventRetryFired
	// EventManualRetry is a user-requested retry. At stamps the token.
	EventManualRetry
	// EventSourceChanged resets the mount onto Src.
	EventSourceChanged
)

// String returns the event name for logs.
func (k EventKind) String() string {
	switch k {
	case EventMount:
		return "mount"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventRetryFired:
		return "retry_fired"
	case EventManualRetry:
		return "manual_retry"
	case EventSourceChanged:
		return "source_changed"
	}
	return "unknown"
}

// Event is an input to Transition.
type Event struct {
	Kind      EventKind
	Src       string
	CachedURL string
	Err       string
	At        time.Time
}

// ActionKind identifies the side effect requested by Transition.
type ActionKind int

const (
	// ActionNone requests nothing.
	ActionNone ActionKind = iota
	// ActionFetch requests a load of URL.
	ActionFetch
	// ActionScheduleRetry requests a timer of Delay.
	ActionScheduleRetry
	// ActionStore requests that the loaded bytes be written to the cache.
	ActionStore
	// ActionReportFailure requests the final-error callback.
	ActionReportFailure
)

// String returns the action name for logs.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionFetch:
		return "fetch"
	case ActionScheduleRetry:
		return "schedule_retry"
	case ActionStore:
		return "store"
	case ActionReportFailure:
		return "report_failure"
	}
	return "unknown"
}

// Action is the side effect Transition asks the caller to perform.
type Action struct {
	Kind  ActionKind
	URL   string
	Delay time.Duration
}

// Transition applies e to s under policy p. It has no side effects.
// Events that are not valid in the current status leave s unchanged and
// return ActionNone.
func Transition(s State, e Event, p Policy) (State, Action) {
	none := Action{Kind: ActionNone}

	switch e.Kind {
	case EventMount:
		if s.Status != models.StatusIdle {
			return s, none
		}
		s.Status = models.StatusLoading
		s.Attempt = 0
		s.LastError = ""
		s.FromCache = e.CachedURL != ""
		s.CurrentSrc = s.Src
		if s.FromCache {
			s.CurrentSrc = e.CachedURL
		}
		return s, Action{Kind: ActionFetch, URL: s.CurrentSrc}

	case EventSucceeded:
		if s.Status != models.StatusLoading {
			return s, none
		}
		s.Status = models.StatusLoaded
		s.LastError = ""
		if s.FromCache {
			return s, none
		}
		return s, Action{Kind: ActionStore}

	case EventFailed:
		if s.Status != models.StatusLoading {
			return s, none
		}
		s.LastError = e.Err
		if s.FromCache {
			// The cached copy is gone; load from the origin as a fresh mount.
			s.FromCache = false
			s.CurrentSrc = s.Src
			return s, Action{Kind: ActionFetch, URL: s.CurrentSrc}
		}
		if s.Attempt < p.MaxRetries {
			return s, Action{Kind: ActionScheduleRetry, Delay: Delay(p.BaseDelay, s.Attempt)}
		}
		s.Status = models.StatusFailed
		return s, Action{Kind: ActionReportFailure}

	case EventRetryFired:
		if s.Status != models.StatusLoading || s.FromCache {
			return s, none
		}
		s.Attempt++
		s.CurrentSrc = BustURL(s.Src, e.At, s.Attempt)
		return s, Action{Kind: ActionFetch, URL: s.CurrentSrc}

	case EventManualRetry:
		if s.Status != models.StatusFailed {
			return s, none
		}
		s.Status = models.StatusLoading
		s.Attempt++
		s.CurrentSrc = BustURL(s.Src, e.At, s.Attempt)
		return s, Action{Kind: ActionFetch, URL: s.CurrentSrc}

	case EventSourceChanged:
		return State{Src: e.Src, CurrentSrc: e.Src, Status: models.StatusIdle}, none
	}

	return s, none
}

// Snapshot renders s as the public LoadState.
func (s State) Snapshot(p Policy) models.LoadState {
	return models.LoadState{
		Src:                s.Src,
		CurrentSrc:         s.CurrentSrc,
		Status:             s.Status,
		Label:              s.Status.Label(),
		Attempt:            s.Attempt,
		MaxRetries:         p.MaxRetries,
		FromCache:          s.FromCache,
		LastError:          s.LastError,
		ShowPlaceholder:    s.Status == models.StatusLoading && s.Attempt > 0 && !s.FromCache,
		ShowFailureOverlay: s.Status == models.StatusFailed,
	}
}
