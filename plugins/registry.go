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

package plugins

import (
	"errors"
	"sync"
)

var (
	// ErrEmptyKind is returned when an empty kind is registered.
	ErrEmptyKind = errors.New("prx(plugins): empty plugin kind")
	// ErrNilFactory is returned when a nil factory is registered.
	ErrNilFactory = errors.New("prx(plugins): nil plugin factory")
	// ErrConflictingKind indicates an attempt to re-register a kind with
	// a different factory.
	ErrConflictingKind = errors.New("prx(plugins): conflicting plugin kind registration")
)

// kindRegistry maps plugin kinds to factories. Kinds are registered
// explicitly at program initialization (database/sql driver style); the
// config-driven load path resolves the "kind" field of each declared
// plugin against it.
type kindRegistry struct {
	// mu guards write-side consistency.
	mu sync.Mutex
	// m maps kind to Factory.
	m sync.Map // map[string]Factory
}

// kinds is the process-wide plugin kind registry.
var kinds kindRegistry

// RegisterKind associates a plugin kind with its factory. Registration is
// idempotent for the same (kind, factory) pair and fails on conflicts.
// Typically called from a plugin package's init.
func RegisterKind(kind string, f Factory) error {
	return kinds.register(kind, f)
}

// MustRegisterKind is RegisterKind, panicking on error.
func MustRegisterKind(kind string, f Factory) {
	if err := RegisterKind(kind, f); err != nil {
		panic(err)
	}
}

// register adds a (kind, factory) association.
func (r *kindRegistry) register(kind string, f Factory) error {
	// Validate inputs early.
	if kind == "" {
		return ErrEmptyKind
	}
	if f == nil {
		return ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.m.Load(kind); ok {
		return ErrConflictingKind
	}
	r.m.Store(kind, f)
	return nil
}

// lookup returns the factory registered under kind.
func (r *kindRegistry) lookup(kind string) (Factory, bool) {
	v, ok := r.m.Load(kind)
	if !ok {
		return nil, false
	}
	return v.(Factory), true
}
