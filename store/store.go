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

// Package store provides the generic versioned object store at the heart
// of the composition core: a name-keyed registry holding at most one
// current record per name, readable lock-free by many request-serving
// goroutines while an administrative goroutine replaces entries during
// configuration reload.
//
// The implementation is a copy-on-write immutable map snapshot behind an
// atomic pointer. Readers load the current snapshot and never take locks;
// writers clone the snapshot under a mutex, apply their change, and
// publish the new snapshot atomically. A reader therefore observes either
// the old record or the fully-published new record, never a mix.
package store

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"dirpx.dev/prx/eventbus"
)

// Change kinds published to watchers.
const (
	// Inserted is published when a name is inserted or replaced.
	Inserted eventbus.Kind = "inserted"
	// Removed is published when a name is removed.
	Removed eventbus.Kind = "removed"
)

// Change describes one mutation of a store, as seen by watchers.
type Change[T any] struct {
	// Name is the affected key.
	Name string
	// Value is the inserted value, or the removed previous value.
	Value T
}

// Store is a concurrent versioned registry mapping name to record.
// The zero value is not usable; construct with New.
type Store[T any] struct {
	// mu serializes writers so we never publish partially-built snapshots.
	mu sync.Mutex
	// snap is the current immutable snapshot. Never mutate a published
	// map; writers clone, modify the clone, and swap atomically.
	snap atomic.Pointer[map[string]T]
	// bus notifies watchers of mutations.
	bus *eventbus.Bus[Change[T]]
}

// New constructs an empty store.
func New[T any]() *Store[T] {
	s := &Store[T]{bus: eventbus.New[Change[T]]()}
	empty := map[string]T{}
	s.snap.Store(&empty)
	return s
}

// Insert atomically publishes value under name, replacing any previous
// record. It returns the previous record and whether one existed. The
// superseded record's lifecycle (stopping its live object) is the
// caller's responsibility; the store only makes it unreachable.
func (s *Store[T]) Insert(name string, value T) (prev T, replaced bool) {
	s.mu.Lock()
	cur := *s.snap.Load()
	prev, replaced = cur[name]

	next := maps.Clone(cur)
	next[name] = value
	s.snap.Store(&next)
	// Publish before releasing the writer lock so watchers observe events
	// in mutation order. Publish never blocks, so holding mu here is safe.
	s.bus.Publish(Inserted, Change[T]{Name: name, Value: value})
	s.mu.Unlock()

	return prev, replaced
}

// Get returns the current record under name. It never blocks: reads load
// the current snapshot atomically.
func (s *Store[T]) Get(name string) (T, bool) {
	v, ok := (*s.snap.Load())[name]
	return v, ok
}

// Remove atomically removes name, returning the previous record and
// whether one existed.
func (s *Store[T]) Remove(name string) (prev T, removed bool) {
	s.mu.Lock()
	cur := *s.snap.Load()
	prev, removed = cur[name]
	if !removed {
		s.mu.Unlock()
		return prev, false
	}

	next := maps.Clone(cur)
	delete(next, name)
	s.snap.Store(&next)
	s.bus.Publish(Removed, Change[T]{Name: name, Value: prev})
	s.mu.Unlock()

	return prev, true
}

// Snapshot returns a consistent point-in-time copy of all entries.
// Mutating the returned map does not affect the store.
func (s *Store[T]) Snapshot() map[string]T {
	return maps.Clone(*s.snap.Load())
}

// Len returns the number of current entries.
func (s *Store[T]) Len() int {
	return len(*s.snap.Load())
}

// Watch subscribes to store mutations. Events are delivered asynchronously
// by the store's single delivery worker, in mutation order; the channel is
// closed when ctx is cancelled or the store is closed.
func (s *Store[T]) Watch(ctx context.Context) <-chan eventbus.Event[Change[T]] {
	return s.bus.Subscribe(ctx)
}

// Close tears down the watch bus. The store remains readable afterwards;
// further mutations are still applied but no longer observable via Watch.
func (s *Store[T]) Close() {
	s.bus.Close()
}
