/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package prx is the composition core of the DIRPX reverse proxy.
//
// prx turns a declarative configuration tree into a live, queryable graph
// of request-routing objects and background provider services, and
// exposes versioned object stores that can be hot-swapped while traffic
// is being served. It performs no network I/O itself: it constructs and
// publishes the objects that will.
//
// # Design
//
// The core of prx is New, which drives a deterministic, fail-fast
// construction sequence and returns an immutable Components bundle:
//
//   - Environment: the shared platform context (configuration tree,
//     metric registry, build metadata, an internal asynchronous event
//     bus with a single delivery worker, and a mutable runtime key-value
//     store for introspection data). One environment per components
//     instance; nothing is process-global.
//
//   - Object stores: two independent name-keyed versioned registries,
//     one for routing objects and one for provider services. Each store
//     is a copy-on-write snapshot behind an atomic pointer: readers are
//     lock-free and always observe either the old record or the fully
//     published new one, never a mix. Replacing a name atomically
//     unpublishes the previous record; the superseded live object is
//     then stopped, with failures logged and never propagated.
//
//   - Graph builders: recursive, registry-dispatched construction of
//     routing objects (package builder) and provider services (package
//     providers) from {type, tags, config} definitions. Nested child
//     definitions recurse; bare names resolve against already-published
//     objects, so forward references across the declaration order are
//     rejected rather than deferred. Errors carry the dotted path of
//     enclosing names.
//
//   - Plugins and services: plugins load before any object is built and
//     wrap every routing object in load order; background services come
//     from a pluggable loader and merge with caller-supplied ones
//     (caller wins on collision).
//
// # Usage
//
// A typical embedding binary does:
//
//	cfg, err := config.ParseYAML(data)
//	...
//	c, err := prx.New(
//	    prx.WithConfig(cfg),
//	    prx.WithAdditionalObjectTypes(myTypes),
//	)
//	if err != nil {
//	    // Fail fast: nothing was partially published by a failed attempt
//	    // beyond siblings that had already succeeded.
//	}
//	defer c.Close()
//
//	rec, ok := c.RouteDatabase().Get("root")
//
// Hot reload is modeled as construction, not mutation: re-run New over
// the same stores (WithRouteDatabase/WithProviderDatabase) with the new
// configuration, and replaced names stop their superseded objects.
//
// # Concurrency model
//
// Construction runs synchronously on the calling goroutine; any step's
// failure aborts the whole sequence and tears down what was created.
// After construction the Components value is immutable and exposes only
// read accessors; the stores support many concurrent readers alongside
// one administrative writer without reader-side locking.
package prx
