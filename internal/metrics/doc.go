// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - Image load attempts, retries, backoff delays and final failures
  - Blob cache lookups, writes and sweeps
  - Outbound image fetch latency and size
  - Circuit breaker state transitions per origin host
  - HTTP request latency and throughput

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3858/metrics

# Usage

Collectors are registered with the default registry through promauto at package
init. Callers use the Record* helpers rather than touching collectors directly:

	metrics.RecordLoadAttempt(false)
	metrics.RecordRetryScheduled(500 * time.Millisecond)
	metrics.RecordCacheLookup(metrics.CacheResultHit)
*/
package metrics
