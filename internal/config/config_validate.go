// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package config

import (
	"fmt"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateLoader(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateFetch(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateLoader validates retry settings
func (c *Config) validateLoader() error {
	if c.Loader.MaxRetries < 0 {
		return fmt.Errorf("LOADER_MAX_RETRIES must be >= 0, got %d", c.Loader.MaxRetries)
	}
	if c.Loader.BaseDelay <= 0 {
		return fmt.Errorf("LOADER_BASE_DELAY must be > 0, got %s", c.Loader.BaseDelay)
	}
	if c.Loader.ProxyWaitTimeout <= 0 {
		return fmt.Errorf("LOADER_PROXY_WAIT_TIMEOUT must be > 0, got %s", c.Loader.ProxyWaitTimeout)
	}
	if c.Loader.MaxMounts < 0 {
		return fmt.Errorf("LOADER_MAX_MOUNTS must be >= 0, got %d", c.Loader.MaxMounts)
	}
	return nil
}

// validateCache validates blob cache settings (only if enabled)
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendBadger:
		if c.Cache.Path == "" {
			return fmt.Errorf("CACHE_PATH is required when CACHE_BACKEND=badger")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, badger (got %q)", c.Cache.Backend)
	}
	if c.Cache.TTL < time.Second {
		return fmt.Errorf("CACHE_TTL must be at least 1s, got %s", c.Cache.TTL)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

// validateFetch validates outbound request settings
func (c *Config) validateFetch() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("FETCH_MAX_BYTES must be > 0")
	}
	if c.Fetch.RateLimit < 0 {
		return fmt.Errorf("FETCH_RATE_LIMIT must not be negative")
	}
	if c.Fetch.RateLimit > 0 && c.Fetch.RateBurst < 1 {
		return fmt.Errorf("FETCH_RATE_BURST must be >= 1 when FETCH_RATE_LIMIT is set")
	}
	if c.Fetch.BreakerFailureRatio <= 0 || c.Fetch.BreakerFailureRatio > 1 {
		return fmt.Errorf("FETCH_BREAKER_FAILURE_RATIO must be in (0, 1], got %g", c.Fetch.BreakerFailureRatio)
	}
	if c.Fetch.BreakerTimeout <= 0 {
		return fmt.Errorf("FETCH_BREAKER_TIMEOUT must be > 0")
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	return nil
}

// validateSecurity validates CORS and rate limiting settings
func (c *Config) validateSecurity() error {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return err
		}
	}

	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 1 when rate limiting is enabled")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
