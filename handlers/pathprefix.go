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

package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
)

// buildPathPrefixRouter constructs a router that dispatches requests to
// the child whose configured path prefix is the longest match. Children
// are declared under config key "routes" as prefix to child-node pairs,
// where each node is either an inline-nested definition or a reference
// name resolved against already-published objects.
func buildPathPrefixRouter(path []string, ctx *builder.Context, def *apis.Definition) (apis.RoutingObject, error) {
	raw, ok := def.Config["routes"]
	if !ok {
		return nil, fmt.Errorf("%w: missing routes", apis.ErrBadConfig)
	}
	nodes, ok := raw.(map[string]any)
	if !ok || len(nodes) == 0 {
		return nil, fmt.Errorf("%w: routes must be a non-empty prefix to object mapping", apis.ErrBadConfig)
	}

	prefixes := make([]string, 0, len(nodes))
	for prefix := range nodes {
		prefixes = append(prefixes, prefix)
	}
	// Longest prefix first at match time; lexical tie-break keeps builds
	// and routing deterministic.
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})

	routes := make([]prefixRoute, 0, len(prefixes))
	for _, prefix := range prefixes {
		node := nodes[prefix]
		child, err := builder.Child(path, ctx, "routes."+prefix, node)
		if err != nil {
			return nil, err
		}
		// A string node is a reference: the referenced object stays owned
		// by the store and must not be stopped through this router.
		_, isRef := node.(string)
		routes = append(routes, prefixRoute{prefix: prefix, child: child, owned: !isRef})
	}

	return &pathPrefixRouter{routes: routes}, nil
}

// prefixRoute is one prefix to child binding.
type prefixRoute struct {
	prefix string
	child  apis.RoutingObject
	owned  bool
}

// pathPrefixRouter routes requests by longest matching path prefix.
type pathPrefixRouter struct {
	// routes is ordered longest prefix first.
	routes []prefixRoute
}

// Ensure pathPrefixRouter implements apis.RoutingObject.
var _ apis.RoutingObject = (*pathPrefixRouter)(nil)

// Handle dispatches to the first (longest) matching prefix, answering 404
// when nothing matches.
func (r *pathPrefixRouter) Handle(ctx context.Context, req *apis.Request) (*apis.Response, error) {
	for _, rt := range r.routes {
		if strings.HasPrefix(req.Path, rt.prefix) {
			return rt.child.Handle(ctx, req)
		}
	}
	return &apis.Response{Status: 404}, nil
}

// Stop stops inline-owned children. Referenced children belong to the
// store and are left alone.
func (r *pathPrefixRouter) Stop() error {
	var errs []error
	for _, rt := range r.routes {
		if rt.owned {
			errs = append(errs, rt.child.Stop())
		}
	}
	return errors.Join(errs...)
}
