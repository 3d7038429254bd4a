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

// Package handlers holds the builtin routing-object and interceptor type
// factories the graph builder dispatches against. New object types are
// added by registering a factory capability at components-build time,
// never by extending these.
package handlers

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
)

// Builtin routing-object type names.
const (
	// TypeStaticResponder answers every request with a fixed response.
	TypeStaticResponder = "StaticResponder"
	// TypePathPrefixRouter routes by longest matching path prefix.
	TypePathPrefixRouter = "PathPrefixRouter"
	// TypePipeline wraps a handler with an explicit chain of named plugins.
	TypePipeline = "Pipeline"
)

// Builtins returns the builtin routing-object factory registry. The
// returned map is a fresh copy; callers may merge additions into it.
func Builtins() map[string]builder.ObjectFactory {
	return map[string]builder.ObjectFactory{
		TypeStaticResponder:  builder.ObjectFactoryFunc(buildStaticResponder),
		TypePathPrefixRouter: builder.ObjectFactoryFunc(buildPathPrefixRouter),
		TypePipeline:         builder.ObjectFactoryFunc(buildPipeline),
	}
}

// staticConfig is the StaticResponder config payload.
type staticConfig struct {
	Status  int               `mapstructure:"status"`
	Content string            `mapstructure:"content"`
	Headers map[string]string `mapstructure:"headers"`
}

// buildStaticResponder constructs a handler answering every request with a
// fixed status, content, and header set.
func buildStaticResponder(_ []string, _ *builder.Context, def *apis.Definition) (apis.RoutingObject, error) {
	var cfg staticConfig
	if err := mapstructure.Decode(def.Config, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apis.ErrBadConfig, err)
	}
	if cfg.Status == 0 {
		cfg.Status = 200
	}
	if cfg.Status < 100 || cfg.Status > 599 {
		return nil, fmt.Errorf("%w: status %d out of range", apis.ErrBadConfig, cfg.Status)
	}

	body := []byte(cfg.Content)
	return apis.HandlerFunc(func(_ context.Context, _ *apis.Request) (*apis.Response, error) {
		resp := &apis.Response{Status: cfg.Status, Body: body}
		if len(cfg.Headers) > 0 {
			resp.Header = make(map[string]string, len(cfg.Headers))
			for k, v := range cfg.Headers {
				resp.Header[k] = v
			}
		}
		return resp, nil
	}), nil
}
