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

// RoutingRecord is what the routing object store holds per name: the
// origin definition's type, tags and config snapshot plus the live object.
// Records are immutable once published; replacement swaps the whole record.
type RoutingRecord struct {
	// Type is the definition's type tag.
	Type string
	// Tags is the definition's tag set.
	Tags []string
	// Config is a snapshot of the definition's opaque config.
	Config map[string]any
	// Object is the live routing object, decorated for introspection.
	Object RoutingObject
}

// ProviderRecord is the provider-store analogue of RoutingRecord: the live
// handle is a start/stop Service rather than a per-request handler.
type ProviderRecord struct {
	// Type is the definition's type tag.
	Type string
	// Tags is the definition's tag set.
	Tags []string
	// Config is a snapshot of the definition's opaque config.
	Config map[string]any
	// Service is the live provider service.
	Service Service
}
