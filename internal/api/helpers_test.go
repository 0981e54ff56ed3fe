// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/imagegate/internal/blobcache"
	"github.com/tomtom215/imagegate/internal/fetcher"
	"github.com/tomtom215/imagegate/internal/loader"
	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/models"
)

var errOriginDown = errors.New("origin: 503")

// envelope mirrors models.APIResponse with a raw data payload.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

// echoFetcher returns the requested URL as the image body.
func echoFetcher() fetcher.Fetcher {
	return fetcher.FetcherFunc(func(_ context.Context, url string) (*models.Blob, error) {
		return &models.Blob{Data: []byte(url), ContentType: "image/png"}, nil
	})
}

// failingFetcher fails every request.
func failingFetcher() fetcher.Fetcher {
	return fetcher.FetcherFunc(func(context.Context, string) (*models.Blob, error) {
		return nil, errOriginDown
	})
}

// countingFetcher wraps next and counts origin requests.
type countingFetcher struct {
	next fetcher.Fetcher

	mu   sync.Mutex
	urls []string
}

func (c *countingFetcher) Fetch(ctx context.Context, url string) (*models.Blob, error) {
	c.mu.Lock()
	c.urls = append(c.urls, url)
	c.mu.Unlock()
	return c.next.Fetch(ctx, url)
}

func (c *countingFetcher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.urls)
}

// testClock is a settable clock shared by caches under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	handler *Handler
	loader  *loader.Loader
	router  http.Handler
}

// newTestServer wires a loader with 1ms backoff and two retries behind the
// router. Rate limiting is disabled unless mwCfg says otherwise.
func newTestServer(t *testing.T, f fetcher.Fetcher, mwCfg *ChiMiddlewareConfig, opts ...loader.Option) *testServer {
	t.Helper()
	return newTestServerWithSweeper(t, f, mwCfg, nil, opts...)
}

func newTestServerWithSweeper(t *testing.T, f fetcher.Fetcher, mwCfg *ChiMiddlewareConfig, sweeper *blobcache.Sweeper, opts ...loader.Option) *testServer {
	t.Helper()

	cfg := loader.Config{MaxRetries: 2, BaseDelay: time.Millisecond, CacheTTL: time.Minute}
	opts = append([]loader.Option{loader.WithImageLogger(logging.NewImageLoggerWith(zerolog.Nop()))}, opts...)
	l := loader.New(cfg, f, opts...)

	h := NewHandler(l, sweeper, HandlerConfig{ProxyWaitTimeout: 5 * time.Second, CacheBackend: "memory"})

	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}

	t.Cleanup(func() {
		h.Shutdown()
		l.Close()
	})

	return &testServer{handler: h, loader: l, router: NewRouter(h, NewChiMiddleware(mwCfg))}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// mount posts body and returns the new image ID.
func (s *testServer) mount(t *testing.T, body string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/images", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.MountResponse
	decodeData(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("mount returned empty id")
	}
	return resp.ID
}

// settle waits for the image with id to reach a terminal state.
func (s *testServer) settle(t *testing.T, id string) models.LoadState {
	t.Helper()
	img, err := s.handler.mounts.get(id)
	if err != nil {
		t.Fatalf("image %s not mounted", id)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := img.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v (state %+v)", err, st)
	}
	return st
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Fatalf("status = %q, error = %+v", env.Status, env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
	return env
}
