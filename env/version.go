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

import "fmt"

// Build metadata, overridable at link time:
//
//	-ldflags "-X dirpx.dev/prx/env.Release=1.2.3 -X dirpx.dev/prx/env.Commit=abc123"
var (
	// Release is the release version.
	Release = "dev"
	// Commit is the VCS commit the binary was built from.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Version is the build/version metadata carried by the environment.
type Version struct {
	// Release is the release version.
	Release string
	// Commit is the VCS commit.
	Commit string
	// Date is the build date.
	Date string
}

// ReadVersion returns the link-time build metadata.
func ReadVersion() Version {
	return Version{Release: Release, Commit: Commit, Date: Date}
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("prx %s (commit=%s, date=%s)", v.Release, v.Commit, v.Date)
}
