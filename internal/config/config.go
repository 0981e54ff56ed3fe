// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package config

import "time"

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
)

// Config holds all application configuration.
type Config struct {
	Loader   LoaderConfig   `koanf:"loader"`
	Cache    CacheConfig    `koanf:"cache"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// LoaderConfig holds the defaults applied to every mounted image.
type LoaderConfig struct {
	// MaxRetries is the automatic retry budget. Zero disables automatic retries.
	MaxRetries int `koanf:"max_retries"`

	// BaseDelay is the first retry delay; later delays double.
	BaseDelay time.Duration `koanf:"base_delay"`

	// ProxyWaitTimeout bounds how long the proxy endpoint waits for a
	// terminal state before giving up.
	ProxyWaitTimeout time.Duration `koanf:"proxy_wait_timeout"`

	// MaxMounts caps the images held by the API at once. Zero means no limit.
	MaxMounts int `koanf:"max_mounts"`
}

// CacheConfig holds blob cache settings.
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is "memory" (per process) or "badger" (survives restarts).
	Backend string `koanf:"backend"`

	// TTL is the lifetime of a cached image.
	TTL time.Duration `koanf:"ttl"`

	// Path is the badger directory (required when backend is badger).
	Path string `koanf:"path"`

	// SweepInterval is the period of the background purge. Zero disables it;
	// the once-per-session purge still runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// FetchConfig holds outbound image request settings.
type FetchConfig struct {
	Timeout   time.Duration `koanf:"timeout"`
	MaxBytes  int64         `koanf:"max_bytes"`
	UserAgent string        `koanf:"user_agent"`
	RateLimit float64       `koanf:"rate_limit"`
	RateBurst int           `koanf:"rate_burst"`

	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds CORS and API rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
