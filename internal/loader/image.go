// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"context"
	"strings"
	"sync"

	"github.com/tomtom215/imagegate/internal/metrics"
	"github.com/tomtom215/imagegate/internal/models"
)

// Image is one mounted image. All methods are safe for concurrent use.
type Image struct {
	l    *Loader
	opts mountOptions

	mu        sync.Mutex
	state     State
	gen       uint64
	unmounted bool
	timer     Timer
	cancel    context.CancelFunc
	blob      *models.Blob

	// settled is closed when the current generation reaches a terminal
	// status, and replaced when it leaves one.
	settled chan struct{}
}

func newImage(l *Loader, src string, opts mountOptions) *Image {
	return &Image{
		l:       l,
		opts:    opts,
		state:   State{Src: src, CurrentSrc: src, Status: models.StatusIdle},
		settled: make(chan struct{}),
	}
}

// State returns a snapshot of the image.
func (im *Image) State() models.LoadState {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.state.Snapshot(im.opts.policy)
}

// Wait blocks until the image is loaded or failed and returns that snapshot.
// It returns ErrClosed if the loader closes first.
func (im *Image) Wait(ctx context.Context) (models.LoadState, error) {
	for {
		im.mu.Lock()
		if im.unmounted {
			im.mu.Unlock()
			return models.LoadState{}, ErrUnmounted
		}
		if im.state.Status.IsTerminal() {
			snap := im.state.Snapshot(im.opts.policy)
			im.mu.Unlock()
			return snap, nil
		}
		ch := im.settled
		im.mu.Unlock()

		select {
		case <-ch:
		case <-im.l.baseCtx.Done():
			return im.State(), ErrClosed
		case <-ctx.Done():
			return im.State(), ctx.Err()
		}
	}
}

// Content returns the loaded bytes.
func (im *Image) Content() (*models.Blob, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if im.unmounted {
		return nil, ErrUnmounted
	}
	if im.state.Status != models.StatusLoaded || im.blob == nil {
		return nil, ErrNotLoaded
	}
	return im.blob, nil
}

// Retry re-enters loading from the failed state with attempt+1.
func (im *Image) Retry() error {
	im.mu.Lock()
	if im.unmounted {
		im.mu.Unlock()
		return ErrUnmounted
	}
	if im.l.Closed() {
		im.mu.Unlock()
		return ErrClosed
	}
	if im.state.Status != models.StatusFailed {
		im.mu.Unlock()
		return ErrNotFailed
	}
	im.dispatchLocked(im.gen, Event{Kind: EventManualRetry, At: im.l.now()})
	src, attempt := im.state.Src, im.state.Attempt
	im.mu.Unlock()

	metrics.RecordManualRetry()
	im.l.log.ManualRetry(src, attempt)
	return nil
}

// SetSource switches the image to src, resetting to attempt 0. Setting the
// current source again is a no-op.
func (im *Image) SetSource(ctx context.Context, src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return ErrEmptySource
	}

	im.mu.Lock()
	if im.unmounted {
		im.mu.Unlock()
		return ErrUnmounted
	}
	if im.l.Closed() {
		im.mu.Unlock()
		return ErrClosed
	}
	if src == im.state.Src {
		im.mu.Unlock()
		return nil
	}
	from := im.state.Src
	im.resetLocked()
	im.dispatchLocked(im.gen, Event{Kind: EventSourceChanged, Src: src})
	gen := im.gen
	im.mu.Unlock()

	im.l.log.SourceChanged(from, src)
	im.start(ctx, gen, src)
	return nil
}

// Unmount cancels the pending retry and in-flight fetch. No state change or
// callback happens afterwards. Unmount is idempotent.
func (im *Image) Unmount() {
	im.mu.Lock()
	if im.unmounted {
		im.mu.Unlock()
		return
	}
	im.resetLocked()
	im.unmounted = true
	if !im.state.Status.IsTerminal() {
		close(im.settled)
	}
	im.mu.Unlock()

	im.l.unmounted()
}

func (im *Image) generation() uint64 {
	im.mu.Lock()
	defer im.mu.Unlock()
	return im.gen
}

// start looks up the cache for src and dispatches the mount event.
func (im *Image) start(ctx context.Context, gen uint64, src string) {
	cached := im.l.lookup(ctx, src)

	im.mu.Lock()
	defer im.mu.Unlock()
	im.dispatchLocked(gen, Event{Kind: EventMount, CachedURL: cached})
}

// resetLocked disposes the retry timer and in-flight fetch and moves to a
// new generation.
func (im *Image) resetLocked() {
	if im.timer != nil {
		im.timer.Stop()
		im.timer = nil
	}
	if im.cancel != nil {
		im.cancel()
		im.cancel = nil
	}
	im.gen++
	im.blob = nil
}

// dispatchLocked feeds ev through Transition and performs the actions that
// must happen under the lock. Store and report actions are returned for the
// caller to run after unlocking. Nothing is dispatched once the loader is
// closed, so an image frozen by Close keeps its last observed state.
func (im *Image) dispatchLocked(gen uint64, ev Event) Action {
	if gen != im.gen || im.unmounted || im.l.Closed() {
		return Action{Kind: ActionNone}
	}

	prev := im.state.Status
	next, act := Transition(im.state, ev, im.opts.policy)
	im.state = next

	switch {
	case !prev.IsTerminal() && next.Status.IsTerminal():
		close(im.settled)
	case prev.IsTerminal() && !next.Status.IsTerminal():
		im.settled = make(chan struct{})
	}

	switch act.Kind {
	case ActionFetch:
		im.startFetchLocked(act.URL)
	case ActionScheduleRetry:
		im.scheduleLocked(act)
	}
	return act
}

func (im *Image) startFetchLocked(url string) {
	gen := im.gen
	ctx, cancel := context.WithCancel(im.l.baseCtx)
	im.cancel = cancel
	if !im.l.goBackground(func() { im.runFetch(ctx, cancel, gen, url) }) {
		cancel()
	}
}

func (im *Image) scheduleLocked(act Action) {
	if im.l.Closed() {
		return
	}
	gen := im.gen
	im.timer = im.l.scheduler.AfterFunc(act.Delay, func() { im.onRetryTimer(gen) })

	metrics.RecordRetryScheduled(act.Delay)
	im.l.log.RetryScheduled(im.state.Src, im.state.Attempt+1, act.Delay)
}

func (im *Image) onRetryTimer(gen uint64) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if gen != im.gen || im.unmounted || im.l.Closed() {
		return
	}
	im.timer = nil
	im.dispatchLocked(gen, Event{Kind: EventRetryFired, At: im.l.now()})
}

func (im *Image) runFetch(ctx context.Context, cancel context.CancelFunc, gen uint64, url string) {
	defer cancel()

	blob, err := im.l.fetcher.Fetch(ctx, url)

	im.mu.Lock()
	if gen != im.gen || im.unmounted || im.l.baseCtx.Err() != nil {
		im.mu.Unlock()
		return
	}
	metrics.RecordLoadAttempt(err == nil)

	var act Action
	if err != nil {
		im.l.log.AttemptFailed(im.state.Src, im.state.Attempt, err)
		act = im.dispatchLocked(gen, Event{Kind: EventFailed, Err: err.Error()})
	} else {
		im.blob = blob
		act = im.dispatchLocked(gen, Event{Kind: EventSucceeded})
	}
	snap := im.state.Snapshot(im.opts.policy)
	im.mu.Unlock()

	if snap.Status == models.StatusLoaded {
		im.l.log.Loaded(snap.Src, snap.Attempt, snap.FromCache)
	}

	switch act.Kind {
	case ActionStore:
		im.l.store(snap.Src, blob, im.opts.cacheTTL)
	case ActionReportFailure:
		im.reportFailure(gen, snap)
	}
}

func (im *Image) reportFailure(gen uint64, snap models.LoadState) {
	metrics.RecordFinalFailure()
	im.l.log.FinalFailure(snap.Src, snap.Attempt, snap.MaxRetries, snap.LastError)

	if im.opts.onFinalError == nil {
		return
	}
	im.mu.Lock()
	// A manual retry may have started between publishing snap and here.
	live := gen == im.gen && !im.unmounted && im.state.Status == models.StatusFailed
	im.mu.Unlock()
	if !live {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			im.l.log.CallbackPanic(snap.Src, r)
		}
	}()
	im.opts.onFinalError(snap)
}
