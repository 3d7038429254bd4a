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

// Package env provides the shared environment threaded through the
// composition core: the configuration tree, the metric registry, build
// metadata, an internal asynchronous event bus, and a mutable runtime
// key-value store for introspection data.
//
// An Environment is constructed fresh for, and torn down with, exactly one
// components instance. Nothing in it is process-global, so multiple
// instances (for example under test) never cross-contaminate.
package env

import (
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"dirpx.dev/prx/config"
	"dirpx.dev/prx/eventbus"
)

// meterScope is the instrumentation scope name used for the environment meter.
const meterScope = "dirpx.dev/prx"

// Environment is the immutable bundle of shared platform dependencies.
// Only the runtime store and the event bus carry mutable state; both are
// scoped to this instance.
type Environment struct {
	// id uniquely identifies this environment instance.
	id string
	// cfg is the configuration tree.
	cfg *config.Config
	// provider is the metric registry.
	provider metric.MeterProvider
	// meter is the environment's instrumentation scope.
	meter metric.Meter
	// version is the build/version metadata.
	version Version
	// bus is the internal event channel (single delivery worker).
	bus *eventbus.Bus[any]
	// runtime is the mutable introspection store.
	runtime *RuntimeStore
}

// New constructs an environment around cfg.
func New(cfg *config.Config, opts ...Option) *Environment {
	if cfg == nil {
		cfg = config.FromMap(nil)
	}
	e := &Environment{
		id:      uuid.NewString(),
		cfg:     cfg,
		version: ReadVersion(),
		runtime: NewRuntimeStore(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.provider == nil {
		e.provider = noop.NewMeterProvider()
	}
	if e.bus == nil {
		e.bus = eventbus.New[any]()
	}
	e.meter = e.provider.Meter(meterScope)
	return e
}

// Option is a functional option that mutates an Environment during construction.
type Option func(*Environment)

// WithMeterProvider sets the metric registry. Defaults to a no-op provider.
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(e *Environment) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithVersion overrides the build metadata.
func WithVersion(v Version) Option {
	return func(e *Environment) {
		e.version = v
	}
}

// WithBusBuffer sets the event bus buffer size.
func WithBusBuffer(size int) Option {
	return func(e *Environment) {
		e.bus = eventbus.NewWithBuffer[any](size)
	}
}

// ID returns the unique identifier of this environment instance.
func (e *Environment) ID() string { return e.id }

// Configuration returns the configuration tree.
func (e *Environment) Configuration() *config.Config { return e.cfg }

// MeterProvider returns the metric registry.
func (e *Environment) MeterProvider() metric.MeterProvider { return e.provider }

// Meter returns the environment's instrumentation scope.
func (e *Environment) Meter() metric.Meter { return e.meter }

// Version returns the build/version metadata.
func (e *Environment) Version() Version { return e.version }

// Bus returns the internal event channel.
func (e *Environment) Bus() *eventbus.Bus[any] { return e.bus }

// Runtime returns the mutable introspection store.
func (e *Environment) Runtime() *RuntimeStore { return e.runtime }

// Close tears down the event bus. The environment is unusable for
// publishing afterwards.
func (e *Environment) Close() {
	e.bus.Close()
}
