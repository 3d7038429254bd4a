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
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
)

// RequestIDHeader is the header the RequestId interceptor stamps.
const RequestIDHeader = "X-Request-Id"

// Builtin interceptor type names.
const (
	// TypeRequestID stamps a unique request id header.
	TypeRequestID = "RequestId"
	// TypeTimer records request count and latency through the
	// environment's metric registry.
	TypeTimer = "Timer"
)

// InterceptorBuiltins returns the fixed builtin interceptor-type registry.
// The returned map is a fresh copy.
func InterceptorBuiltins() map[string]builder.InterceptorFactory {
	return map[string]builder.InterceptorFactory{
		TypeRequestID: builder.InterceptorFactoryFunc(buildRequestID),
		TypeTimer:     builder.InterceptorFactoryFunc(buildTimer),
	}
}

// buildRequestID constructs the RequestId interceptor: it assigns a
// request id header when the caller did not supply one.
func buildRequestID(_ *builder.Context) (apis.Interceptor, error) {
	return func(next apis.RoutingObject) apis.RoutingObject {
		return apis.Wrap(next, func(ctx context.Context, req *apis.Request) (*apis.Response, error) {
			if req.Header == nil {
				req.Header = map[string]string{}
			}
			if req.Header[RequestIDHeader] == "" {
				req.Header[RequestIDHeader] = uuid.NewString()
			}
			return next.Handle(ctx, req)
		})
	}, nil
}

// buildTimer constructs the Timer interceptor over the environment meter.
func buildTimer(bctx *builder.Context) (apis.Interceptor, error) {
	meter := bctx.Environment.Meter()
	requests, err := meter.Int64Counter("prx.requests",
		metric.WithDescription("Requests handled by routing objects."))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("prx.request.duration",
		metric.WithDescription("Request handling latency."),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return func(next apis.RoutingObject) apis.RoutingObject {
		return apis.Wrap(next, func(ctx context.Context, req *apis.Request) (*apis.Response, error) {
			start := time.Now()
			resp, err := next.Handle(ctx, req)

			attrs := metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.Bool("error", err != nil),
			)
			requests.Add(ctx, 1, attrs)
			latency.Record(ctx, float64(time.Since(start))/float64(time.Millisecond), attrs)
			return resp, err
		})
	}, nil
}
