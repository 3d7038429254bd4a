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

// Package resolver resolves by-name references between routing objects
// during graph construction, backed by the routing object store.
package resolver

import (
	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/store"
)

// New constructs an apis.RefLookup that resolves names against db.
// Resolution is synchronous: a name resolves only if a record is already
// published under it, which is what rejects forward references across the
// top-level declaration order.
func New(db *store.Store[apis.RoutingRecord]) apis.RefLookup {
	return &storeLookup{db: db}
}

// storeLookup answers reference lookups from the routing object store.
type storeLookup struct {
	db *store.Store[apis.RoutingRecord]
}

// Ensure storeLookup implements apis.RefLookup.
var _ apis.RefLookup = (*storeLookup)(nil)

// Resolve returns the live routing object published under name, or an
// *apis.UnresolvedReferenceError if no record exists at resolution time.
func (l *storeLookup) Resolve(name string) (apis.RoutingObject, error) {
	rec, ok := l.db.Get(name)
	if !ok {
		return nil, &apis.UnresolvedReferenceError{Name: name}
	}
	return rec.Object, nil
}
