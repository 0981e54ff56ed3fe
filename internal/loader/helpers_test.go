// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/imagegate/internal/blobcache"
	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/models"
)

var errOrigin = errors.New("origin: 503")

// fakeTimer is a pending callback held by fakeScheduler.
type fakeTimer struct {
	delay time.Duration
	f     func()

	mu      sync.Mutex
	stopped bool
	fired   bool
}

func (ft *fakeTimer) Stop() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	wasActive := !ft.stopped && !ft.fired
	ft.stopped = true
	return wasActive
}

// fakeScheduler records timers and fires them on demand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
	armed  chan struct{}
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{armed: make(chan struct{}, 256)}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	ft := &fakeTimer{delay: d, f: f}
	s.mu.Lock()
	s.timers = append(s.timers, ft)
	s.mu.Unlock()
	s.armed <- struct{}{}
	return ft
}

// waitArmed blocks until n timers have been armed in total.
func (s *fakeScheduler) waitArmed(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		s.mu.Lock()
		got := len(s.timers)
		s.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-s.armed:
		case <-deadline:
			t.Fatalf("timed out waiting for %d timers, have %d", n, got)
		}
	}
}

func (s *fakeScheduler) timer(i int) *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[i]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.timers))
	for i, ft := range s.timers {
		out[i] = ft.delay
	}
	return out
}

// fire runs timer i regardless of whether it was stopped, the way a real
// timer can race with Stop. It reports whether the timer had been stopped.
func (s *fakeScheduler) fire(i int) bool {
	ft := s.timer(i)
	ft.mu.Lock()
	stopped := ft.stopped
	ft.fired = true
	ft.mu.Unlock()
	ft.f()
	return stopped
}

// scriptedFetcher answers each call with the result of fn.
type scriptedFetcher struct {
	mu   sync.Mutex
	urls []string
	fn   func(call int, url string) (*models.Blob, error)
}

func (f *scriptedFetcher) Fetch(_ context.Context, url string) (*models.Blob, error) {
	f.mu.Lock()
	call := len(f.urls)
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.fn(call, url)
}

func (f *scriptedFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func alwaysFail() *scriptedFetcher {
	return &scriptedFetcher{fn: func(int, string) (*models.Blob, error) { return nil, errOrigin }}
}

func succeedAfter(failures int) *scriptedFetcher {
	return &scriptedFetcher{fn: func(call int, _ string) (*models.Blob, error) {
		if call < failures {
			return nil, errOrigin
		}
		return &models.Blob{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}, nil
	}}
}

var fixedNow = time.UnixMilli(1760000000000)

func quietLogger() *logging.ImageLogger {
	return logging.NewImageLoggerWith(zerolog.New(&bytes.Buffer{}))
}

func waitState(t *testing.T, img *Image) models.LoadState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := img.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v (state %+v)", err, st)
	}
	return st
}

// stepClock is a clock advanced by hand.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: fixedNow}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// waitCached polls until the background cache write for src lands.
func waitCached(t *testing.T, cache blobcache.BlobCache, src string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := cache.Get(context.Background(), blobcache.Key(src)); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("%s was never cached", src)
}

// writerFunc adapts a function to io.Writer.
type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
