// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/imagegate/internal/config"
	"github.com/tomtom215/imagegate/internal/models"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

// loadTestConfig loads configuration from a scratch directory with env
// overrides, the way main does.
func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	return cfg
}

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// mountAndSettle mounts src and polls until it is loaded or failed.
func mountAndSettle(t *testing.T, h http.Handler, src string) (string, models.LoadState) {
	t.Helper()
	rec := serve(t, h, http.MethodPost, "/api/v1/images", `{"src":"`+src+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("mount status = %d, body %s", rec.Code, rec.Body.String())
	}
	var env apiEnvelope
	var mounted models.MountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(env.Data, &mounted); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec = serve(t, h, http.MethodGet, "/api/v1/images/"+mounted.ID, "")
		var st models.LoadState
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(env.Data, &st); err != nil {
			t.Fatal(err)
		}
		if st.Status.IsTerminal() {
			return mounted.ID, st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("image %s never settled", mounted.ID)
	return "", models.LoadState{}
}

func TestNewApp_BadgerCacheServesRevisits(t *testing.T) {
	photo := pngBytes(t)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(photo)
	}))
	defer origin.Close()

	cfg := loadTestConfig(t, map[string]string{
		"CACHE_BACKEND":      "badger",
		"CACHE_PATH":         t.TempDir(),
		"DISABLE_RATE_LIMIT": "true",
		"LOG_LEVEL":          "error",
	})

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()
	if a.db == nil {
		t.Fatal("badger backend should open a database")
	}

	h := a.server.Handler
	src := origin.URL + "/reports/bridge.png"

	first, st := mountAndSettle(t, h, src)
	if st.Status != models.StatusLoaded || st.FromCache {
		t.Fatalf("first load = %+v", st)
	}
	rec := serve(t, h, http.MethodGet, "/api/v1/images/"+first+"/content", "")
	if !bytes.Equal(rec.Body.Bytes(), photo) {
		t.Fatalf("content mismatch: %d bytes", rec.Body.Len())
	}

	// The cache write happens after the loaded state is published.
	deadline := time.Now().Add(5 * time.Second)
	for {
		_, st = mountAndSettle(t, h, src)
		if st.FromCache || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !st.FromCache || st.Status != models.StatusLoaded {
		t.Errorf("revisit = %+v, want loaded from cache", st)
	}

	rec = serve(t, h, http.MethodPost, "/api/v1/cache/purge", "")
	if rec.Code != http.StatusOK {
		t.Errorf("purge status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestNewApp_CacheDisabled(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{
		"CACHE_ENABLED": "false",
		"LOG_LEVEL":     "error",
	})

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if a.loader.CacheEnabled() {
		t.Error("loader should not use a cache")
	}
	rec := serve(t, a.server.Handler, http.MethodPost, "/api/v1/cache/purge", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("purge status = %d, want 503", rec.Code)
	}
}

func TestNewApp_BadgerPathError(t *testing.T) {
	// A regular file cannot be opened as a badger directory.
	cfg := loadTestConfig(t, map[string]string{
		"CACHE_BACKEND": "badger",
		"CACHE_PATH":    "config-not-a-dir",
		"LOG_LEVEL":     "error",
	})
	if err := os.WriteFile("config-not-a-dir", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := newApp(cfg); err == nil {
		t.Fatal("expected error opening badger on a file")
	}
}

func TestApp_SupervisedLifecycle(t *testing.T) {
	port := freePort(t)
	cfg := loadTestConfig(t, map[string]string{
		"HTTP_HOST":             "127.0.0.1",
		"HTTP_PORT":             strconv.Itoa(port),
		"HTTP_SHUTDOWN_TIMEOUT": "2s",
		"CACHE_SWEEP_INTERVAL":  "50ms",
		"LOG_LEVEL":             "error",
	})

	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := a.tree.ServeBackground(ctx)

	url := "http://" + a.server.Addr + "/api/v1/health/ready"
	var resp *http.Response
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never became reachable: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("tree error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop")
	}

	if !a.loader.Closed() {
		t.Error("loader should be closed after shutdown")
	}
}
