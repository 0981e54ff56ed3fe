// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Loader.MaxRetries != 10 {
		t.Errorf("Loader.MaxRetries = %d, want 10", cfg.Loader.MaxRetries)
	}
	if cfg.Loader.BaseDelay != 500*time.Millisecond {
		t.Errorf("Loader.BaseDelay = %v, want 500ms", cfg.Loader.BaseDelay)
	}
	if cfg.Loader.MaxMounts != 1000 {
		t.Errorf("Loader.MaxMounts = %d, want 1000", cfg.Loader.MaxMounts)
	}
	if cfg.Cache.TTL != 300*time.Second {
		t.Errorf("Cache.TTL = %v, want 300s", cfg.Cache.TTL)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Backend != CacheBackendMemory {
		t.Errorf("Cache = %+v, want enabled memory backend", cfg.Cache)
	}
	if cfg.Server.Port != 3858 {
		t.Errorf("Server.Port = %d, want 3858", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"LOADER_MAX_RETRIES":          "loader.max_retries",
		"CACHE_BACKEND":               "cache.backend",
		"HTTP_PORT":                   "server.port",
		"DISABLE_RATE_LIMIT":          "security.rate_limit_disabled",
		"FETCH_BREAKER_FAILURE_RATIO": "fetch.breaker_failure_ratio",
		"log_level":                   "logging.level",
		"PATH":                        "",
		"HOME":                        "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestLoadWithKoanf_EnvOverrides mutates the process environment; not parallel.
func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("LOADER_MAX_RETRIES", "3")
	t.Setenv("LOADER_BASE_DELAY", "250ms")
	t.Setenv("CACHE_BACKEND", "badger")
	t.Setenv("CACHE_PATH", "/tmp/imagegate-test")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://dashboard.example.go.id, https://admin.example.go.id")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Loader.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Loader.MaxRetries)
	}
	if cfg.Loader.BaseDelay != 250*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 250ms", cfg.Loader.BaseDelay)
	}
	if cfg.Cache.Backend != CacheBackendBadger || cfg.Cache.Path != "/tmp/imagegate-test" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	want := []string{"https://dashboard.example.go.id", "https://admin.example.go.id"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "imagegate.yaml")
	yaml := `
loader:
  max_retries: 4
  base_delay: 1s
cache:
  enabled: false
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Loader.MaxRetries != 4 || cfg.Loader.BaseDelay != time.Second {
		t.Errorf("Loader = %+v", cfg.Loader)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by file")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override file: level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %q", cfg.Logging.Format)
	}
	// Untouched values keep their defaults.
	if cfg.Cache.TTL != 300*time.Second {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL)
	}
}

func TestLoadWithKoanf_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("LOADER_MAX_RETRIES", "-1")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for negative retries")
	}
}
