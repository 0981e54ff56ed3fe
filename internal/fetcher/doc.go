// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

// Package fetcher is the image display primitive used by the loader: given a
// URL it either produces decodable image bytes or an error.
//
// Three layers compose:
//
//   - HTTPFetcher performs the origin request with a rate limiter, a response
//     size cap and an image sanity check.
//   - BreakerFetcher keeps one circuit breaker per origin host. An open breaker
//     fails fast; the loader treats that like any other failed attempt.
//   - Resolver short-circuits "blob:imagegate/" object URLs to the local
//     registry so cache hits never reach the network.
//
// The loader only sees the Fetcher interface; tests substitute scripted fakes.
package fetcher
