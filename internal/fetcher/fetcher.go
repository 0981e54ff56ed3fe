// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for DecodeConfig
	_ "image/jpeg" // register JPEG decoder for DecodeConfig
	_ "image/png"  // register PNG decoder for DecodeConfig
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/imagegate/internal/metrics"
	"github.com/tomtom215/imagegate/internal/models"
)

var (
	// ErrNotImage is returned when the response body is not a usable image.
	ErrNotImage = errors.New("fetcher: response is not an image")

	// ErrStatus is returned for non-2xx origin responses.
	ErrStatus = errors.New("fetcher: unexpected status")

	// ErrTooLarge is returned when the body exceeds the configured limit.
	ErrTooLarge = errors.New("fetcher: image exceeds size limit")
)

// Fetcher loads image bytes for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.Blob, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*models.Blob, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*models.Blob, error) {
	return f(ctx, url)
}

// Config controls outbound image requests.
type Config struct {
	// Timeout bounds a single request including body read.
	Timeout time.Duration

	// MaxBytes caps the accepted body size.
	MaxBytes int64

	// UserAgent is sent on every request.
	UserAgent string

	// RateLimit is the sustained outbound request rate per second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the limiter bucket size.
	RateBurst int
}

// DefaultConfig returns conservative defaults for origin fetches.
func DefaultConfig() Config {
	return Config{
		Timeout:   15 * time.Second,
		MaxBytes:  20 << 20,
		UserAgent: "imagegate/1.0",
		RateLimit: 50,
		RateBurst: 100,
	}
}

// HTTPFetcher fetches images from HTTP(S) origins.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	maxBytes  int64
	userAgent string
}

// NewHTTPFetcher builds a fetcher from cfg. A nil client uses a new
// http.Client with cfg.Timeout.
func NewHTTPFetcher(cfg Config, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultConfig().MaxBytes
	}

	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if burst <= 0 {
		burst = 1
	}

	return &HTTPFetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, burst),
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
	}
}

// Fetch performs a GET against url and validates the response as an image.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*models.Blob, error) {
	start := time.Now()
	blob, err := f.fetch(ctx, url)
	metrics.RecordFetch(time.Since(start), blob.Size(), err)
	return blob, err
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (*models.Blob, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	contentType, err := checkImage(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return &models.Blob{Data: data, ContentType: contentType}, nil
}

// checkImage validates data as an image and returns its content type.
// Formats with a registered decoder must decode their header. Other formats
// are accepted when the origin declares an image media type.
func checkImage(data []byte, declared string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty body", ErrNotImage)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	switch {
	case err == nil:
		return "image/" + format, nil
	case !errors.Is(err, image.ErrFormat):
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	mediaType, _, _ := mime.ParseMediaType(declared)
	if strings.HasPrefix(mediaType, "image/") {
		return mediaType, nil
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrNotImage, declared)
}
