// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

/*
Package services provides suture.Service wrappers for the components
supervised by the supervisor package.

  - HTTPServerService: runs the API server and shuts it down gracefully
  - CacheSweeperService: purges expired cache entries on an interval
  - LoaderService: unmounts images and closes the loader on shutdown

Each service returns ctx.Err() when its context is canceled, so suture
treats shutdown as a normal stop rather than a failure. Dependencies are
small interfaces (HTTPServer, Sweeper, Closer) so the services can be tested
without a network listener or a real cache.
*/
package services
