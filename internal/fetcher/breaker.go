// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package fetcher

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/metrics"
	"github.com/tomtom215/imagegate/internal/models"
)

// BreakerConfig tunes the per-origin circuit breakers.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval after which closed-state counts reset.
	Interval time.Duration

	// Timeout spent open before probing again.
	Timeout time.Duration

	// MinRequests before the failure ratio is evaluated.
	MinRequests uint32

	// FailureRatio at or above which the breaker opens.
	FailureRatio float64
}

// DefaultBreakerConfig returns defaults suited to flaky image CDNs.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerFetcher wraps a Fetcher with one circuit breaker per origin host.
//
// The breaker uses real time for its interval and timeout. Loader tests
// exercise retries against fakes, not through the breaker.
type BreakerFetcher struct {
	next Fetcher
	cfg  BreakerConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*models.Blob]
}

// NewBreakerFetcher wraps next.
func NewBreakerFetcher(next Fetcher, cfg BreakerConfig) *BreakerFetcher {
	return &BreakerFetcher{
		next:     next,
		cfg:      cfg,
		breakers: make(map[string]*gobreaker.CircuitBreaker[*models.Blob]),
	}
}

// Fetch runs the wrapped fetch through the breaker for rawURL's host.
func (b *BreakerFetcher) Fetch(ctx context.Context, rawURL string) (*models.Blob, error) {
	cb := b.breakerFor(hostOf(rawURL))
	name := cb.Name()

	blob, err := cb.Execute(func() (*models.Blob, error) {
		return b.next.Fetch(ctx, rawURL)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	}
	return blob, err
}

// State returns the breaker state for host, or closed if none exists yet.
func (b *BreakerFetcher) State(host string) gobreaker.State {
	b.mu.Lock()
	cb, ok := b.breakers[host]
	b.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed
	}
	return cb.State()
}

func (b *BreakerFetcher) breakerFor(host string) *gobreaker.CircuitBreaker[*models.Blob] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[host]; ok {
		return cb
	}

	name := "origin:" + host
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cfg := b.cfg
	cb := gobreaker.NewCircuitBreaker[*models.Blob](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
		// A caller giving up is not a verdict on the origin.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	b.breakers[host] = cb
	return cb
}

// hostOf returns the host of rawURL, or rawURL itself when it does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
