// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package config provides centralized configuration management for Imagegate.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/imagegate/config.yaml
 3. Environment variables (explicit mapping table, unknown variables ignored)

# Sections

  - LoaderConfig: retry budget and backoff base applied to every mount
  - CacheConfig: blob cache backend (memory or badger), TTL and sweep interval
  - FetchConfig: outbound request timeout, size cap, rate limit, circuit breaker
  - ServerConfig: HTTP listener
  - SecurityConfig: CORS origins and API rate limiting
  - LoggingConfig: zerolog level, format and caller

# Environment Variables

Loader:
  - LOADER_MAX_RETRIES: automatic retries per image (default: 10)
  - LOADER_BASE_DELAY: first retry delay (default: 500ms)
  - LOADER_PROXY_WAIT_TIMEOUT: how long the proxy endpoint waits for a result (default: 2m)

Cache:
  - CACHE_ENABLED: consult the blob cache before fetching (default: true)
  - CACHE_BACKEND: memory or badger (default: memory)
  - CACHE_TTL: lifetime of a cached image (default: 300s)
  - CACHE_PATH: badger directory (default: /data/imagegate-cache)
  - CACHE_SWEEP_INTERVAL: periodic purge of expired entries (default: 10m)

Fetch:
  - FETCH_TIMEOUT, FETCH_MAX_BYTES, FETCH_USER_AGENT
  - FETCH_RATE_LIMIT, FETCH_RATE_BURST
  - FETCH_BREAKER_MAX_REQUESTS, FETCH_BREAKER_INTERVAL, FETCH_BREAKER_TIMEOUT,
    FETCH_BREAKER_MIN_REQUESTS, FETCH_BREAKER_FAILURE_RATIO

Server and security:
  - HTTP_HOST, HTTP_PORT (default: 3858), HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
