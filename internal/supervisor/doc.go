// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package supervisor runs the service's long-lived components under a
thejerf/suture/v4 supervision tree.

Tree layout:

	imagegate (root)
	├── storage-layer
	│   ├── cache-sweeper   periodic purge of expired cache entries
	│   └── image-loader    unmounts images and closes the loader on shutdown
	└── api-layer
	    └── http-server     chi router behind net/http

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog. The slog logger passed to NewSupervisorTree is normally
logging.NewSlogLogger(), so events land in the same zerolog stream as the
rest of the service.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddStorageService(services.NewCacheSweeperService(sweeper, cfg.Cache.SweepInterval))
	tree.AddStorageService(services.NewLoaderService(imageLoader, handler.Shutdown))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Services live in the services subpackage.
*/
package supervisor
