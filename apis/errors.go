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

package apis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType indicates a definition's type tag matched no factory
	// in the merged routing-object registry.
	ErrUnknownType = errors.New("prx(apis): unknown routing object type")
	// ErrBadConfig indicates a factory rejected a definition's config payload.
	ErrBadConfig = errors.New("prx(apis): malformed object configuration")
)

// ConstructionError is returned when a routing object cannot be built:
// the type tag is unknown, or the factory rejected the config payload.
// Path carries the full chain of enclosing names for diagnosability.
// Construction errors are fatal to the object being built and to the
// components construction as a whole; nothing is published for the
// failing name.
type ConstructionError struct {
	// Path is the chain of enclosing names, outermost first.
	Path []string
	// Type is the offending definition's type tag.
	Type string
	// Err is the underlying cause. Matches ErrUnknownType or ErrBadConfig
	// via errors.Is for the two built-in failure classes.
	Err error
}

// Error implements error.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("prx: cannot build %q (type %q): %v", DottedPath(e.Path), e.Type, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConstructionError) Unwrap() error { return e.Err }

// UnresolvedReferenceError is returned when a definition references a name
// that has no published routing object at resolution time, including
// forward references across the top-level declaration order.
type UnresolvedReferenceError struct {
	// Name is the unresolved reference.
	Name string
	// Path is the chain of enclosing names of the referencing definition.
	// May be nil when resolution was requested outside a build.
	Path []string
}

// Error implements error.
func (e *UnresolvedReferenceError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("prx: unresolved reference %q", e.Name)
	}
	return fmt.Sprintf("prx: unresolved reference %q at %q", e.Name, DottedPath(e.Path))
}

// UnknownProviderTypeError is the provider-side analogue of an unknown
// object type: the definition's type tag matched no provider factory.
type UnknownProviderTypeError struct {
	// Name is the name the provider was declared under.
	Name string
	// Type is the offending type tag.
	Type string
}

// Error implements error.
func (e *UnknownProviderTypeError) Error() string {
	return fmt.Sprintf("prx: unknown provider type %q for %q", e.Type, e.Name)
}

// DottedPath renders a chain of enclosing names as a dotted diagnostic path.
func DottedPath(path []string) string {
	return strings.Join(path, ".")
}
