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

// Package services loads the platform's background services and merges
// them with caller-supplied ones.
package services

import (
	"fmt"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/env"
	"dirpx.dev/prx/providers"
	"dirpx.dev/prx/store"
)

// Loader produces the platform's background services, given the
// environment and the routing object store. Pluggable: embedding binaries
// may substitute their own.
type Loader func(e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (map[string]apis.Service, error)

// FromConfig is the default loader: it builds services declared in the
// configuration's top-level "services" section against the builtin
// provider-type registry. A missing section yields an empty map.
func FromConfig(e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (map[string]apis.Service, error) {
	defs, err := e.Configuration().Definitions("services")
	if err != nil {
		return nil, fmt.Errorf("prx(services): %w", err)
	}

	out := make(map[string]apis.Service, len(defs))
	for _, def := range defs {
		svc, err := providers.Build([]string{def.Name}, &def, providers.Builtins(), e, routeDB)
		if err != nil {
			return nil, err
		}
		out[def.Name] = svc
	}
	return out, nil
}

// Merge combines loader-produced services with additionally supplied
// ones. On key collision the additionally supplied entry wins. A nil
// additional map returns loaded unchanged.
func Merge(loaded, additional map[string]apis.Service) map[string]apis.Service {
	if additional == nil {
		return loaded
	}
	out := make(map[string]apis.Service, len(loaded)+len(additional))
	for name, svc := range loaded {
		out[name] = svc
	}
	for name, svc := range additional {
		out[name] = svc
	}
	return out
}
