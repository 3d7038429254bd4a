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

// Service is a long-running background process with a start/stop lifecycle,
// distinct from per-request routing objects. Provider objects (e.g. a
// health-check monitor) and platform services both implement it.
//
// Start and Stop are called from the components goroutine; implementations
// spawn their own goroutines for background work. Stop MUST be safe to call
// after a failed Start, and MUST cause any goroutines spawned by Start to
// terminate.
type Service interface {
	// Start begins background operation. It returns promptly; long-running
	// work happens on goroutines owned by the service.
	Start() error
	// Stop terminates background operation and releases resources.
	Stop() error
}
