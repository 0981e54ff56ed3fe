// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package models defines data structures shared across Imagegate.

Key Components:

  - CacheEntry: A time-boxed mapping from a derived image key to an object URL
  - Blob: Fetched image bytes with their content type
  - Status: Load status of a mounted image (Idle, Loading, Loaded, Failed)
  - LoadState: Snapshot of a mounted image's attempt counter and current source
  - APIResponse: Standardized API response wrapper

Model Categories:

1. Cache Models:
  - CacheEntry: key, object URL and absolute expiry
  - Blob: raw bytes addressed by an object URL

2. Loader Models:
  - Status: typed enum with exhaustive Label() mapping
  - LoadState: diagnostic view returned by the loader and the API

3. API Request/Response Models:
  - APIResponse: Standard response wrapper
  - APIError: Error details
  - Metadata: Response metadata (timestamp, timing)

All JSON tags use snake_case to match the rest of the dashboard API.
*/
package models
