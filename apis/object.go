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

import "context"

// Request is the proxy-internal request model handed to routing objects.
// It is deliberately transport-agnostic: the network front-end translates
// wire traffic into Requests before any routing object sees them.
type Request struct {
	// Method is the request method ("GET", "POST", ...).
	Method string
	// Path is the request path ("/api/v1/users").
	Path string
	// Header holds request headers. May be nil.
	Header map[string]string
	// Body is the request payload. May be nil.
	Body []byte
}

// Response is the proxy-internal response model produced by routing objects.
type Response struct {
	// Status is the response status code.
	Status int
	// Header holds response headers. May be nil.
	Header map[string]string
	// Body is the response payload. May be nil.
	Body []byte
}

// RoutingObject is a live handler capable of processing or forwarding a
// request. Routing objects are constructed from Definitions by the graph
// builder and published into an object store, where they are read
// concurrently by request-serving goroutines.
//
// Implementations MUST be safe for concurrent Handle calls. Stop releases
// any resources held by the object; it is called at most once, when the
// object is superseded by a same-named replacement or when the owning
// components instance tears down.
type RoutingObject interface {
	// Handle processes req and returns a response, or an error if the
	// request cannot be served.
	Handle(ctx context.Context, req *Request) (*Response, error)
	// Stop releases resources held by this object. Stop failures are
	// logged by the caller and never propagated past the store boundary.
	Stop() error
}

// HandlerFunc adapts a plain function to RoutingObject with a no-op Stop.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// Handle implements RoutingObject.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Stop implements RoutingObject. It does nothing.
func (HandlerFunc) Stop() error { return nil }

// Wrap returns a routing object whose Handle is fn and whose Stop
// delegates to next. Interceptors and plugins use it so that lifecycle
// calls reach the wrapped object through every layer.
func Wrap(next RoutingObject, fn HandlerFunc) RoutingObject {
	return wrapped{next: next, fn: fn}
}

// wrapped is one composition layer over an inner routing object.
type wrapped struct {
	next RoutingObject
	fn   HandlerFunc
}

// Handle implements RoutingObject.
func (w wrapped) Handle(ctx context.Context, req *Request) (*Response, error) {
	return w.fn(ctx, req)
}

// Stop implements RoutingObject by delegating to the wrapped object.
func (w wrapped) Stop() error { return w.next.Stop() }

// Interceptor is a composable wrapping layer around a routing object.
// The returned object observes or modifies request handling and delegates
// to next.
type Interceptor func(next RoutingObject) RoutingObject

// Introspectable is implemented by decorated routing objects that expose
// their origin definition for tracing and admin surfaces.
type Introspectable interface {
	// ObjectType is the definition's type tag, e.g. "StaticResponder".
	ObjectType() string
	// ObjectTags is the definition's tag set.
	ObjectTags() []string
	// Origin is the dotted path of enclosing names this object was built at.
	Origin() string
}
