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

// Package builder turns object definitions into live routing objects.
//
// Build dispatches on the definition's type tag against a registry of
// factories (builtins merged with caller-supplied additions; builtins win
// on collision), lets the matched factory recurse into nested child
// definitions through Child, applies the loaded plugin chain and the
// registered interceptor types as wrapping layers, and finally decorates
// the composed object with introspectable metadata.
//
// Construction is side-effect free: no object is published anywhere by
// this package. Publication into the object store is the caller's job,
// which is what keeps a failed build from ever corrupting the store.
package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/env"
	"dirpx.dev/prx/store"
)

// ObjectFactory constructs one kind of routing object from a definition.
// Factories receive the context so they can recurse into child definitions
// inside their own config, and the current path for diagnostics.
type ObjectFactory interface {
	// Build constructs a routing object from def. Config validation
	// failures should wrap apis.ErrBadConfig.
	Build(path []string, ctx *Context, def *apis.Definition) (apis.RoutingObject, error)
}

// ObjectFactoryFunc adapts a plain function to ObjectFactory.
type ObjectFactoryFunc func(path []string, ctx *Context, def *apis.Definition) (apis.RoutingObject, error)

// Build implements ObjectFactory.
func (f ObjectFactoryFunc) Build(path []string, ctx *Context, def *apis.Definition) (apis.RoutingObject, error) {
	return f(path, ctx, def)
}

// InterceptorFactory constructs one registered interceptor type.
type InterceptorFactory interface {
	// Build constructs the interceptor for this context.
	Build(ctx *Context) (apis.Interceptor, error)
}

// InterceptorFactoryFunc adapts a plain function to InterceptorFactory.
type InterceptorFactoryFunc func(ctx *Context) (apis.Interceptor, error)

// Build implements InterceptorFactory.
func (f InterceptorFactoryFunc) Build(ctx *Context) (apis.Interceptor, error) {
	return f(ctx)
}

// Context is the immutable bundle of dependencies threaded through every
// recursive build call. It is assembled once per components instance and
// shared by all builds performed through it.
type Context struct {
	// Refs resolves by-name references to already-published objects.
	Refs apis.RefLookup
	// Environment is the shared platform environment.
	Environment *env.Environment
	// RouteDB is the routing object store (read access for factories).
	RouteDB *store.Store[apis.RoutingRecord]
	// Factories is the merged type-factory registry.
	Factories map[string]ObjectFactory
	// Plugins is the ordered chain of loaded plugins.
	Plugins []apis.NamedPlugin
	// Interceptors is the fixed interceptor-type registry.
	Interceptors map[string]InterceptorFactory
	// RequestTracking is reserved; currently always false.
	RequestTracking bool
}

// Plugin returns the loaded plugin with the given name.
func (c *Context) Plugin(name string) (apis.NamedPlugin, bool) {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return apis.NamedPlugin{}, false
}

// MergeFactories merges caller-supplied factories into the builtin set.
// Builtins take precedence on key collision: callers cannot override a
// builtin type name.
func MergeFactories(builtins, additional map[string]ObjectFactory) map[string]ObjectFactory {
	out := make(map[string]ObjectFactory, len(builtins)+len(additional))
	for name, f := range additional {
		out[name] = f
	}
	for name, f := range builtins {
		out[name] = f
	}
	return out
}

// Build recursively constructs a live routing object from def.
//
// path is the list of enclosing names, outermost first; it is used purely
// for diagnostics and is carried into every error raised beneath this
// call. The returned object is fully composed (plugins + interceptors)
// and metadata-decorated; it has not been published anywhere.
func Build(path []string, ctx *Context, def *apis.Definition) (apis.RoutingObject, error) {
	factory, ok := ctx.Factories[def.Type]
	if !ok {
		return nil, &apis.ConstructionError{Path: path, Type: def.Type, Err: apis.ErrUnknownType}
	}

	base, err := factory.Build(path, ctx, def)
	if err != nil {
		return nil, buildError(path, def.Type, err)
	}

	composed, err := compose(ctx, base)
	if err != nil {
		return nil, buildError(path, def.Type, err)
	}

	return Decorate(def, path, composed), nil
}

// Child constructs the child object occupying the named slot of an
// enclosing definition's config. A mapping node is an inline-nested
// definition and recurses into Build; a string node is a by-name
// reference and goes through the reference resolver instead.
func Child(path []string, ctx *Context, slot string, node any) (apis.RoutingObject, error) {
	childPath := append(append([]string{}, path...), slot)

	switch n := node.(type) {
	case string:
		obj, err := ctx.Refs.Resolve(n)
		if err != nil {
			var unres *apis.UnresolvedReferenceError
			if errors.As(err, &unres) && unres.Path == nil {
				unres.Path = childPath
			}
			return nil, err
		}
		return obj, nil

	case *apis.Definition:
		return Build(childPath, ctx, n)

	case map[string]any:
		var p struct {
			Type   string         `mapstructure:"type"`
			Tags   []string       `mapstructure:"tags"`
			Config map[string]any `mapstructure:"config"`
		}
		if err := mapstructure.Decode(n, &p); err != nil {
			return nil, &apis.ConstructionError{
				Path: childPath,
				Err:  fmt.Errorf("%w: %v", apis.ErrBadConfig, err),
			}
		}
		return Build(childPath, ctx, &apis.Definition{Type: p.Type, Tags: p.Tags, Config: p.Config})

	case nil:
		return nil, &apis.ConstructionError{
			Path: childPath,
			Err:  fmt.Errorf("%w: missing child object", apis.ErrBadConfig),
		}

	default:
		return nil, &apis.ConstructionError{
			Path: childPath,
			Err:  fmt.Errorf("%w: child must be a nested definition or a reference name, got %T", apis.ErrBadConfig, node),
		}
	}
}

// compose layers the registered interceptor types (in lexical type order,
// for determinism) and then the loaded plugin chain (in load order, so the
// first-loaded plugin ends up outermost) around base.
func compose(ctx *Context, base apis.RoutingObject) (apis.RoutingObject, error) {
	composed := base

	names := make([]string, 0, len(ctx.Interceptors))
	for name := range ctx.Interceptors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wrap, err := ctx.Interceptors[name].Build(ctx)
		if err != nil {
			return nil, fmt.Errorf("interceptor %q: %w", name, err)
		}
		composed = wrap(composed)
	}

	for i := len(ctx.Plugins) - 1; i >= 0; i-- {
		composed = ctx.Plugins[i].Plugin.Wrap(composed)
	}
	return composed, nil
}

// buildError normalizes factory failures: structured build errors pass
// through untouched so the deepest path wins; anything else becomes a
// ConstructionError at this path.
func buildError(path []string, typ string, err error) error {
	var cons *apis.ConstructionError
	var unres *apis.UnresolvedReferenceError
	if errors.As(err, &cons) || errors.As(err, &unres) {
		return err
	}
	return &apis.ConstructionError{Path: path, Type: typ, Err: err}
}
