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
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
)

// pipelineConfig is the Pipeline config payload.
type pipelineConfig struct {
	// Plugins names loaded plugins to layer around the handler,
	// listed outermost first.
	Plugins []string `mapstructure:"plugins"`
	// Handler is the wrapped child: an inline definition or a reference.
	Handler any `mapstructure:"handler"`
}

// buildPipeline constructs a handler wrapped with an explicit chain of
// named plugins. Unlike the implicit plugin chain the builder applies to
// every object, a Pipeline names exactly which loaded plugins wrap its
// child, in which order.
func buildPipeline(path []string, ctx *builder.Context, def *apis.Definition) (apis.RoutingObject, error) {
	var cfg pipelineConfig
	if err := mapstructure.Decode(def.Config, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apis.ErrBadConfig, err)
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("%w: missing handler", apis.ErrBadConfig)
	}

	child, err := builder.Child(path, ctx, "handler", cfg.Handler)
	if err != nil {
		return nil, err
	}
	// A string node is a reference: the referenced object stays owned by
	// the store, so the pipeline's Stop must not reach it.
	if _, isRef := cfg.Handler.(string); isRef {
		child = referencedHandler{child}
	}

	composed := child
	for i := len(cfg.Plugins) - 1; i >= 0; i-- {
		name := cfg.Plugins[i]
		p, ok := ctx.Plugin(name)
		if !ok {
			return nil, fmt.Errorf("%w: no such plugin %q", apis.ErrBadConfig, name)
		}
		composed = p.Plugin.Wrap(composed)
	}
	return composed, nil
}

// referencedHandler fences lifecycle calls off a store-owned child.
type referencedHandler struct {
	apis.RoutingObject
}

// Stop does nothing: the store owns the referenced object's lifecycle.
func (referencedHandler) Stop() error { return nil }
