// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/imagegate/internal/api"
	"github.com/tomtom215/imagegate/internal/blobcache"
	"github.com/tomtom215/imagegate/internal/config"
	"github.com/tomtom215/imagegate/internal/fetcher"
	"github.com/tomtom215/imagegate/internal/loader"
	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/objecturl"
	"github.com/tomtom215/imagegate/internal/supervisor"
	"github.com/tomtom215/imagegate/internal/supervisor/services"
)

// app holds the wired components of a running server.
type app struct {
	tree    *supervisor.SupervisorTree
	server  *http.Server
	handler *api.Handler
	loader  *loader.Loader
	db      *badger.DB
}

// newApp wires storage, fetching, the loader, the API and the supervisor
// tree from cfg. Nothing is started.
func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	var (
		cache    blobcache.BlobCache
		registry objecturl.Registry
		sweeper  *blobcache.Sweeper
		opts     = []loader.Option{loader.WithImageLogger(logging.NewImageLogger())}
	)

	if cfg.Cache.Enabled {
		if cfg.Cache.Backend == config.CacheBackendBadger {
			db, err := blobcache.OpenBadger(cfg.Cache.Path)
			if err != nil {
				return nil, err
			}
			a.db = db
			registry = objecturl.NewBadgerRegistry(db)
		} else {
			registry = objecturl.NewMemoryRegistry()
		}

		var err error
		cache, err = blobcache.New(blobcache.Backend(cfg.Cache.Backend), a.db)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("create blob cache: %w", err)
		}

		sweeper = blobcache.NewSweeper(cache)
		sweeper.AfterSweep = func(ctx context.Context, _ int) {
			// Drop registry objects whose TTL passed.
			if n, err := registry.Sweep(ctx); err != nil {
				logging.Warn().Err(err).Str("component", "objecturl").Msg("Object URL sweep failed")
			} else if n > 0 {
				logging.Debug().Int("revoked", n).Str("component", "objecturl").Msg("Expired object URLs revoked")
			}
		}
		opts = append(opts, loader.WithCache(cache, registry, sweeper))
	}

	origin := fetcher.NewBreakerFetcher(
		fetcher.NewHTTPFetcher(fetcher.Config{
			Timeout:   cfg.Fetch.Timeout,
			MaxBytes:  cfg.Fetch.MaxBytes,
			UserAgent: cfg.Fetch.UserAgent,
			RateLimit: cfg.Fetch.RateLimit,
			RateBurst: cfg.Fetch.RateBurst,
		}, nil),
		fetcher.BreakerConfig{
			MaxRequests:  cfg.Fetch.BreakerMaxRequests,
			Interval:     cfg.Fetch.BreakerInterval,
			Timeout:      cfg.Fetch.BreakerTimeout,
			MinRequests:  cfg.Fetch.BreakerMinRequests,
			FailureRatio: cfg.Fetch.BreakerFailureRatio,
		},
	)

	var f fetcher.Fetcher = origin
	if registry != nil {
		f = fetcher.NewResolver(registry, origin)
	}

	a.loader = loader.New(loader.Config{
		MaxRetries: cfg.Loader.MaxRetries,
		BaseDelay:  cfg.Loader.BaseDelay,
		CacheTTL:   cfg.Cache.TTL,
	}, f, opts...)

	a.handler = api.NewHandler(a.loader, sweeper, api.HandlerConfig{
		ProxyWaitTimeout: cfg.Loader.ProxyWaitTimeout,
		MaxMounts:        cfg.Loader.MaxMounts,
		CacheBackend:     cfg.Cache.Backend,
	})

	router := api.NewRouter(a.handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Proxy requests wait for retries to settle.
		WriteTimeout: cfg.Server.Timeout + cfg.Loader.ProxyWaitTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}
	a.tree = tree

	if sweeper != nil && cfg.Cache.SweepInterval > 0 {
		tree.AddStorageService(services.NewCacheSweeperService(sweeper, cfg.Cache.SweepInterval))
	}
	tree.AddStorageService(services.NewLoaderService(a.loader, a.handler.Shutdown))
	tree.AddAPIService(services.NewHTTPServerService(a.server, cfg.Server.ShutdownTimeout))

	return a, nil
}

// close releases storage. Call after the supervisor tree has stopped.
func (a *app) close() {
	if a.loader != nil {
		a.loader.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache database")
		}
		a.db = nil
	}
}
