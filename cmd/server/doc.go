// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package main is the entry point for the Imagegate server.

Imagegate loads report photos (roads, buildings, irrigation, spatial
planning) for the regional infrastructure dashboard. Each image is retried
with exponential backoff and cache-busting until it loads or exhausts its
retry budget, and successful loads are kept in a time-boxed local cache so
a revisit skips the network entirely.

# Application Architecture

	RootSupervisor ("imagegate")
	├── StorageSupervisor ("storage-layer")
	│   ├── cache-sweeper  (periodic purge of expired entries)
	│   └── image-loader   (unmounts images and closes the loader on shutdown)
	└── APISupervisor ("api-layer")
	    └── http-server    (chi router)

Component initialization order:

 1. Configuration: koanf with defaults, optional YAML file and environment
 2. Logging: zerolog with JSON/console output
 3. Storage: in-memory or BadgerDB blob cache plus object-URL registry
 4. Fetching: HTTP origin fetcher, per-host circuit breaker, blob: resolver
 5. Loader: retry/backoff state machine with cache integration
 6. HTTP Server: chi router with CORS, rate limiting and metrics
 7. Supervisor Tree: suture v4 with sutureslog events

# Configuration

Priority: environment variables > config file > defaults.

	# Loader
	LOADER_MAX_RETRIES=10        # automatic retries per image
	LOADER_BASE_DELAY=500ms      # first retry delay, doubling afterwards
	LOADER_MAX_MOUNTS=1000       # images held by the API at once, 0 for no limit

	# Cache
	CACHE_ENABLED=true
	CACHE_BACKEND=memory         # memory or badger
	CACHE_TTL=300s
	CACHE_PATH=/data/imagegate-cache
	CACHE_SWEEP_INTERVAL=10m

	# Server
	HTTP_PORT=3858
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

The config file is read from CONFIG_PATH, ./config.yaml or
/etc/imagegate/config.yaml.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
connections within HTTP_SHUTDOWN_TIMEOUT, mounted images are unmounted
(pending retries are cancelled) and the loader waits for in-flight cache
writes before BadgerDB is closed.
*/
package main
