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

// Definition is the declarative description of an object to construct:
// a type tag that selects the factory, a free-form tag set, and an opaque
// config payload interpreted by the selected factory.
//
// Definitions are produced once per configuration load and treated as
// immutable afterwards; factories decode Config but never mutate it.
type Definition struct {
	// Name is the name the object is declared under. Empty for
	// inline-nested child definitions.
	Name string
	// Type selects the factory used to construct the object.
	Type string
	// Tags is the declared tag set. May be nil.
	Tags []string
	// Config is the opaque nested config payload. May be nil.
	Config map[string]any
}

// HasTag reports whether the definition carries the given tag.
func (d *Definition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
