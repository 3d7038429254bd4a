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

package builder

import "dirpx.dev/prx/apis"

// Decorate wraps a composed routing object with introspectable metadata:
// the origin definition's type and tags plus the dotted path it was built
// at. Request handling and Stop delegate unchanged.
func Decorate(def *apis.Definition, path []string, obj apis.RoutingObject) apis.RoutingObject {
	return &metadataDecorator{
		RoutingObject: obj,
		objType:       def.Type,
		tags:          append([]string{}, def.Tags...),
		origin:        apis.DottedPath(path),
	}
}

// metadataDecorator exposes origin metadata for tracing and admin surfaces.
type metadataDecorator struct {
	apis.RoutingObject
	objType string
	tags    []string
	origin  string
}

// Ensure the decorator satisfies both contracts.
var (
	_ apis.RoutingObject  = (*metadataDecorator)(nil)
	_ apis.Introspectable = (*metadataDecorator)(nil)
)

// ObjectType returns the origin definition's type tag.
func (d *metadataDecorator) ObjectType() string { return d.objType }

// ObjectTags returns the origin definition's tag set.
func (d *metadataDecorator) ObjectTags() []string { return append([]string{}, d.tags...) }

// Origin returns the dotted path of enclosing names.
func (d *metadataDecorator) Origin() string { return d.origin }
