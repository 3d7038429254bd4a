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

// Package providers constructs long-running service objects from
// definitions, the provider-side analogue of the object graph builder.
//
// Providers dispatch against a separate, fixed registry of provider
// types. They receive the environment and the routing object store, so a
// provider may depend on routing objects (a health monitor probing them),
// but routing objects never depend on providers. No plugin or interceptor
// composition applies here: providers are not per-request handlers.
package providers

import (
	"errors"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/env"
	"dirpx.dev/prx/store"
)

// Factory constructs one kind of provider service from a definition.
type Factory interface {
	// Build constructs the service. Config validation failures should
	// wrap apis.ErrBadConfig.
	Build(path []string, def *apis.Definition, e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (apis.Service, error)
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func(path []string, def *apis.Definition, e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (apis.Service, error)

// Build implements Factory.
func (f FactoryFunc) Build(path []string, def *apis.Definition, e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (apis.Service, error) {
	return f(path, def, e, routeDB)
}

// Builtins returns the fixed builtin provider-type registry. The returned
// map is a fresh copy; this registry accepts no external additions.
func Builtins() map[string]Factory {
	return map[string]Factory{
		TypeHealthCheckMonitor: FactoryFunc(buildHealthCheckMonitor),
	}
}

// Build constructs a provider service from def, dispatching on its type
// tag against registry. An unmatched tag fails with
// *apis.UnknownProviderTypeError; factory failures surface as
// path-annotated construction errors. Nothing is published by this
// function.
func Build(path []string, def *apis.Definition, registry map[string]Factory, e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (apis.Service, error) {
	factory, ok := registry[def.Type]
	if !ok {
		return nil, &apis.UnknownProviderTypeError{Name: apis.DottedPath(path), Type: def.Type}
	}

	svc, err := factory.Build(path, def, e, routeDB)
	if err != nil {
		var cons *apis.ConstructionError
		if errors.As(err, &cons) {
			return nil, err
		}
		return nil, &apis.ConstructionError{Path: path, Type: def.Type, Err: err}
	}
	return svc, nil
}
