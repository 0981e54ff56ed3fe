// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

var (
	// Image Loader Metrics
	ImageLoadAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_load_attempts_total",
			Help: "Total number of image load attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	ImageRetriesScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_retries_scheduled_total",
			Help: "Total number of automatic retries scheduled",
		},
	)

	ImageRetryDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_retry_delay_seconds",
			Help:    "Backoff delay before a scheduled retry",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	ImageFinalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_final_failures_total",
			Help: "Total number of images that exhausted their retry budget",
		},
	)

	ImageManualRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_manual_retries_total",
			Help: "Total number of user-triggered retries from the failed state",
		},
	)

	ImagesMounted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "images_mounted",
			Help: "Current number of mounted images",
		},
	)

	// Blob Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_cache_lookups_total",
			Help: "Total number of blob cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_cache_writes_total",
			Help: "Total number of blob cache writes by result",
		},
		[]string{"result"}, // "success", "error"
	)

	CacheSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "blob_cache_sweep_duration_seconds",
			Help:    "Duration of expired-entry sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheSweepRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blob_cache_sweep_removed_total",
			Help: "Total number of expired entries removed by sweeps",
		},
	)

	CacheSweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blob_cache_sweep_errors_total",
			Help: "Total number of failed sweeps",
		},
	)

	// Fetch Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_fetch_duration_seconds",
			Help:    "Duration of outbound image fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"result"},
	)

	FetchBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_fetch_bytes",
			Help:    "Size of successfully fetched images",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB .. 256MiB
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordLoadAttempt records the outcome of one display-primitive load.
func RecordLoadAttempt(success bool) {
	if success {
		ImageLoadAttempts.WithLabelValues("success").Inc()
		return
	}
	ImageLoadAttempts.WithLabelValues("failure").Inc()
}

// RecordRetryScheduled records an automatic retry and its backoff delay.
func RecordRetryScheduled(delay time.Duration) {
	ImageRetriesScheduled.Inc()
	ImageRetryDelay.Observe(delay.Seconds())
}

// RecordFinalFailure records an image entering the failed state.
func RecordFinalFailure() {
	ImageFinalFailures.Inc()
}

// RecordManualRetry records a user-triggered retry.
func RecordManualRetry() {
	ImageManualRetries.Inc()
}

// TrackMounted tracks the number of mounted images
func TrackMounted(inc bool) {
	if inc {
		ImagesMounted.Inc()
	} else {
		ImagesMounted.Dec()
	}
}

// RecordCacheLookup records a blob cache read.
func RecordCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite records a blob cache write.
func RecordCacheWrite(err error) {
	if err != nil {
		CacheWrites.WithLabelValues("error").Inc()
		return
	}
	CacheWrites.WithLabelValues("success").Inc()
}

// RecordCacheSweep records one expired-entry sweep.
func RecordCacheSweep(duration time.Duration, removed int, err error) {
	CacheSweepDuration.Observe(duration.Seconds())
	if err != nil {
		CacheSweepErrors.Inc()
	}
	if removed > 0 {
		CacheSweepRemoved.Add(float64(removed))
	}
}

// RecordFetch records an outbound image fetch.
func RecordFetch(duration time.Duration, size int, err error) {
	if err != nil {
		FetchDuration.WithLabelValues("failure").Observe(duration.Seconds())
		return
	}
	FetchDuration.WithLabelValues("success").Observe(duration.Seconds())
	FetchBytes.Observe(float64(size))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
