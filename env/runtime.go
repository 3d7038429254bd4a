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

package env

import (
	"sort"
	"sync"
)

// RuntimeStore is the environment's mutable key-value store for
// cross-cutting introspection data. Components publish runtime facts under
// namespaced keys ("plugins.<name>", ...) so admin surfaces can inspect
// them without reaching into subsystem internals.
//
// Safe for concurrent use. Scoped to one environment instance; never
// shared across components instances.
type RuntimeStore struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewRuntimeStore constructs an empty runtime store.
func NewRuntimeStore() *RuntimeStore {
	return &RuntimeStore{m: map[string]any{}}
}

// Set publishes value under key, replacing any previous value.
func (r *RuntimeStore) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
}

// Get returns the value under key.
func (r *RuntimeStore) Get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[key]
	return v, ok
}

// Keys returns all current keys in lexical order.
func (r *RuntimeStore) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a point-in-time copy of all entries.
func (r *RuntimeStore) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.m))
	for k, v := range r.m {
		out[k] = v
	}
	return out
}
