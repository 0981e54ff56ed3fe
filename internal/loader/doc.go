// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

// Package loader implements the resilient image loader: a per-image state
// machine that retries failed loads with exponential backoff and
// cache-busting, consults the local blob cache before touching the network,
// and reports terminal failure through state and an optional callback.
//
// # Structure
//
//   - Transition is a pure function from (State, Event) to (State, Action).
//     It holds every rule of the state machine and is tested in isolation.
//   - Scheduler arms retry timers and hands back a Timer used to cancel them.
//   - Image is one mount. It feeds events into Transition and carries out the
//     returned actions: starting fetches, arming timers, writing the cache,
//     invoking the final-error callback.
//   - Loader owns the shared collaborators (fetcher, cache, object-URL
//     registry, sweeper, scheduler) and creates Images.
//
// # Lifecycle
//
//	Idle -> Loading -> Loaded
//	           |  ^
//	    failure|  |retry timer fired (attempt+1, cache-busted URL)
//	           v  |
//	        Loading (retry pending) -> Failed  (attempt >= maxRetries)
//
//	Failed --manual retry--> Loading (attempt+1)
//	any    --source change--> Idle (attempt 0) -> Loading
//
// Each Image runs at most one fetch at a time, and retries are strictly
// sequential. Unmounting or changing the source cancels the pending timer
// and the in-flight fetch; results from a previous generation are dropped.
//
// # Example
//
//	l := loader.New(loader.DefaultConfig(), resolver,
//	    loader.WithCache(cache, registry, sweeper))
//	img, err := l.Mount(ctx, "https://cdn.example/x.jpg",
//	    loader.WithMaxRetries(3),
//	    loader.OnFinalError(func(s models.LoadState) { ... }))
//	state, err := img.Wait(ctx)
package loader
