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

// RefLookup resolves a routing object by name at graph-construction time.
//
// Resolution is synchronous and happens in declaration order: a name must
// already be published when another definition references it, so forward
// references across the top-level ordering fail with
// *UnresolvedReferenceError rather than being deferred. This ordering rule
// also makes true reference cycles impossible.
type RefLookup interface {
	// Resolve returns the live routing object published under name.
	Resolve(name string) (RoutingObject, error)
}
