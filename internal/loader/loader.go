// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/imagegate/internal/blobcache"
	"github.com/tomtom215/imagegate/internal/fetcher"
	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/metrics"
	"github.com/tomtom215/imagegate/internal/models"
	"github.com/tomtom215/imagegate/internal/objecturl"
)

var (
	// ErrEmptySource is returned when mounting or switching to an empty src.
	ErrEmptySource = errors.New("loader: src must not be empty")

	// ErrNotFailed is returned by Retry when the image is not in the failed state.
	ErrNotFailed = errors.New("loader: manual retry is only available after failure")

	// ErrUnmounted is returned by operations on an unmounted image.
	ErrUnmounted = errors.New("loader: image is unmounted")

	// ErrNotLoaded is returned by Content before the image has loaded.
	ErrNotLoaded = errors.New("loader: image is not loaded")

	// ErrClosed is returned by Mount, Retry and SetSource after Close, and by
	// Wait when Close interrupts it.
	ErrClosed = errors.New("loader: closed")
)

// Config holds loader defaults applied to every mount.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	CacheTTL   time.Duration
}

// DefaultConfig returns maxRetries 10, baseDelay 500ms and a 300s cache TTL.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 10,
		BaseDelay:  500 * time.Millisecond,
		CacheTTL:   300 * time.Second,
	}
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache enables cache integration. sweeper may be nil, in which case no
// purge runs at session start.
func WithCache(cache blobcache.BlobCache, registry objecturl.Registry, sweeper *blobcache.Sweeper) Option {
	return func(l *Loader) {
		l.cache = cache
		l.registry = registry
		l.sweeper = sweeper
	}
}

// WithScheduler replaces the real timer scheduler.
func WithScheduler(s Scheduler) Option {
	return func(l *Loader) {
		l.scheduler = s
	}
}

// WithClock replaces time.Now for cache-busting tokens.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// WithImageLogger replaces the default loader logger.
func WithImageLogger(log *logging.ImageLogger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// Loader creates mounted images that share one fetcher and cache.
type Loader struct {
	cfg       Config
	fetcher   fetcher.Fetcher
	cache     blobcache.BlobCache
	registry  objecturl.Registry
	sweeper   *blobcache.Sweeper
	scheduler Scheduler
	now       func() time.Time
	log       *logging.ImageLogger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	purgeOnce sync.Once

	mu      sync.Mutex
	mounted int
	closed  bool
}

// New creates a Loader. f receives the URLs to load; on a cache hit that is
// an object URL, so f must resolve those (see fetcher.Resolver).
func New(cfg Config, f fetcher.Fetcher, opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		cfg:       cfg,
		fetcher:   f,
		scheduler: RealScheduler,
		now:       time.Now,
		log:       logging.NewImageLogger(),
		baseCtx:   ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CacheEnabled reports whether mounts consult the blob cache.
func (l *Loader) CacheEnabled() bool {
	return l.cache != nil && l.registry != nil
}

// Mounted returns the number of currently mounted images.
func (l *Loader) Mounted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

// Mount creates an image for src and starts loading it. The cache lookup
// happens before Mount returns; the load itself runs in the background.
func (l *Loader) Mount(ctx context.Context, src string, opts ...MountOption) (*Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	mo := mountOptions{
		policy:   Policy{MaxRetries: l.cfg.MaxRetries, BaseDelay: l.cfg.BaseDelay},
		cacheTTL: l.cfg.CacheTTL,
	}
	for _, opt := range opts {
		opt(&mo)
	}
	if mo.policy.MaxRetries < 0 {
		return nil, fmt.Errorf("loader: max retries must be >= 0, got %d", mo.policy.MaxRetries)
	}
	if mo.policy.BaseDelay <= 0 {
		return nil, fmt.Errorf("loader: base delay must be > 0, got %s", mo.policy.BaseDelay)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	l.mounted++
	l.mu.Unlock()
	metrics.TrackMounted(true)

	l.purgeOnce.Do(l.startPurge)

	img := newImage(l, src, mo)
	img.start(ctx, img.generation(), src)
	return img, nil
}

// Close stops background work. In-flight fetches are cancelled, pending
// retries become no-ops when they fire, waiters are released with ErrClosed
// and cache writes already started are awaited. Images stay mounted but keep
// the state they had when Close was called.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

// startPurge runs the once-per-session purge of expired cache entries.
func (l *Loader) startPurge() {
	if l.sweeper == nil || !l.CacheEnabled() {
		return
	}
	l.goBackground(func() {
		// Errors are logged by the sweeper and never block loading.
		_, _ = l.sweeper.Sweep(l.baseCtx)
	})
}

// goBackground runs fn on a tracked goroutine unless the loader is closed.
func (l *Loader) goBackground(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
	return true
}

// Closed reports whether Close has been called.
func (l *Loader) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// lookup consults the cache for src and returns the cached object URL, or ""
// on a miss. Storage errors are logged and treated as a miss.
func (l *Loader) lookup(ctx context.Context, src string) string {
	if !l.CacheEnabled() {
		return ""
	}
	key := blobcache.Key(src)
	entry, err := l.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheLookup(metrics.CacheResultHit)
		l.log.CacheHit(src, entry.ObjectURL)
		return entry.ObjectURL
	case errors.Is(err, blobcache.ErrNotFound):
		metrics.RecordCacheLookup(metrics.CacheResultMiss)
	default:
		metrics.RecordCacheLookup(metrics.CacheResultError)
		l.log.CacheError("get", key, err)
	}
	return ""
}

// store registers blob as an object URL and records it under src's key.
// Failures are logged and otherwise ignored.
func (l *Loader) store(src string, blob *models.Blob, ttl time.Duration) {
	if !l.CacheEnabled() || blob == nil {
		return
	}
	// A write that has started completes even if Close cancels the loader.
	ctx := context.WithoutCancel(l.baseCtx)
	key := blobcache.Key(src)

	handle, err := l.registry.Create(ctx, blob, ttl)
	if err != nil {
		metrics.RecordCacheWrite(err)
		l.log.CacheError("create_object_url", key, err)
		return
	}
	err = l.cache.Set(ctx, key, handle, ttl)
	metrics.RecordCacheWrite(err)
	if err != nil {
		l.log.CacheError("set", key, err)
		_ = l.registry.Revoke(ctx, handle)
	}
}

// unmounted is called once per Image when it unmounts.
func (l *Loader) unmounted() {
	l.mu.Lock()
	l.mounted--
	l.mu.Unlock()
	metrics.TrackMounted(false)
}
