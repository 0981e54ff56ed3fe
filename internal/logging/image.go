// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// ImageLogger emits the loader's lifecycle events with consistent field names.
// A zero value is not usable; construct with NewImageLogger.
type ImageLogger struct {
	logger zerolog.Logger
}

// NewImageLogger returns an ImageLogger tagged with component=loader.
func NewImageLogger() *ImageLogger {
	return &ImageLogger{logger: WithComponent("loader")}
}

// NewImageLoggerWith wraps an explicit logger. Used by tests capturing output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewImageLoggerWith(logger zerolog.Logger) *ImageLogger {
	return &ImageLogger{logger: logger.With().Str("component", "loader").Logger()}
}

// Logger exposes the underlying zerolog logger.
func (l *ImageLogger) Logger() *zerolog.Logger {
	return &l.logger
}

// CacheHit records that a mount was served from the blob cache.
func (l *ImageLogger) CacheHit(src, objectURL string) {
	l.logger.Debug().Str("src", src).Str("object_url", objectURL).Msg("Image served from cache")
}

// CacheError records an absorbed cache storage failure.
func (l *ImageLogger) CacheError(op, key string, err error) {
	l.logger.Warn().Err(err).Str("op", op).Str("key", key).Msg("Blob cache unavailable, treating as miss")
}

// AttemptFailed records a single failed load attempt.
func (l *ImageLogger) AttemptFailed(src string, attempt int, err error) {
	l.logger.Debug().Err(err).Str("src", src).Int("attempt", attempt).Msg("Image load attempt failed")
}

// RetryScheduled records a retry timer being armed.
func (l *ImageLogger) RetryScheduled(src string, attempt int, delay time.Duration) {
	l.logger.Info().
		Str("src", src).
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("Image retry scheduled")
}

// Loaded records a successful load.
func (l *ImageLogger) Loaded(src string, attempt int, fromCache bool) {
	l.logger.Debug().
		Str("src", src).
		Int("attempt", attempt).
		Bool("from_cache", fromCache).
		Msg("Image loaded")
}

// FinalFailure records a load that exhausted its retry budget.
func (l *ImageLogger) FinalFailure(src string, attempt, maxRetries int, lastErr string) {
	l.logger.Warn().
		Str("src", src).
		Int("attempt", attempt).
		Int("max_retries", maxRetries).
		Str("last_error", lastErr).
		Msg("Image load failed permanently")
}

// ManualRetry records a user-initiated retry out of the failed state.
func (l *ImageLogger) ManualRetry(src string, attempt int) {
	l.logger.Info().Str("src", src).Int("attempt", attempt).Msg("Manual image retry")
}

// SourceChanged records a mount being reset onto a new source.
func (l *ImageLogger) SourceChanged(from, to string) {
	l.logger.Debug().Str("from", from).Str("to", to).Msg("Image source changed")
}

// CallbackPanic records a recovered panic from a final-error callback.
func (l *ImageLogger) CallbackPanic(src string, recovered interface{}) {
	l.logger.Error().Str("src", src).Interface("panic", recovered).Msg("Final error callback panicked")
}
