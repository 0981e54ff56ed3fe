// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package fetcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/imagegate/internal/models"
)

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreakerFetcher_OpensPerHost(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	failing := FetcherFunc(func(_ context.Context, url string) (*models.Blob, error) {
		calls.Add(1)
		if url == "https://good.example/a.png" {
			return &models.Blob{Data: []byte{1}}, nil
		}
		return nil, ErrStatus
	})
	bf := NewBreakerFetcher(failing, testBreakerConfig())

	for i := 0; i < 3; i++ {
		if _, err := bf.Fetch(context.Background(), "https://bad.example/a.png"); !errors.Is(err, ErrStatus) {
			t.Fatalf("call %d: err = %v", i, err)
		}
	}
	if got := bf.State("bad.example"); got != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	before := calls.Load()
	if _, err := bf.Fetch(context.Background(), "https://bad.example/a.png?v=1-1"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if calls.Load() != before {
		t.Error("open breaker should not reach the origin")
	}

	if _, err := bf.Fetch(context.Background(), "https://good.example/a.png"); err != nil {
		t.Fatalf("other host affected by open breaker: %v", err)
	}
	if got := bf.State("good.example"); got != gobreaker.StateClosed {
		t.Errorf("good host state = %v", got)
	}
}

func TestBreakerFetcher_CanceledNotCounted(t *testing.T) {
	t.Parallel()

	canceled := FetcherFunc(func(_ context.Context, _ string) (*models.Blob, error) {
		return nil, context.Canceled
	})
	bf := NewBreakerFetcher(canceled, testBreakerConfig())

	for i := 0; i < 5; i++ {
		_, _ = bf.Fetch(context.Background(), "https://slow.example/x.jpg")
	}
	if got := bf.State("slow.example"); got != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://cdn.example.com:8443/a.png?x=1": "cdn.example.com:8443",
		"relative/path.png":                      "relative/path.png",
	}
	for in, want := range tests {
		if got := hostOf(in); got != want {
			t.Errorf("hostOf(%q) = %q, want %q", in, got, want)
		}
	}
}
