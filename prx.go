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

package prx

import (
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
	"dirpx.dev/prx/config"
	"dirpx.dev/prx/env"
	"dirpx.dev/prx/eventloop"
	"dirpx.dev/prx/handlers"
	"dirpx.dev/prx/plugins"
	"dirpx.dev/prx/providers"
	"dirpx.dev/prx/resolver"
	"dirpx.dev/prx/services"
	"dirpx.dev/prx/store"
)

// Configuration sections and keys consumed here.
const (
	// SectionRoutingObjects is the routing-objects configuration section.
	SectionRoutingObjects = "routingObjects"
	// SectionProviders is the providers configuration section.
	SectionProviders = "providers"
	// KeyWorkers sizes the event-loop group.
	KeyWorkers = "proxy.workers"
	// eventLoopName names the event-loop group.
	eventLoopName = "prx"
)

// ErrNoConfiguration is returned when New is called without a
// configuration tree.
var ErrNoConfiguration = errors.New("prx: no configuration supplied")

// LoggingSetup is the pluggable logging-setup hook invoked during
// construction. It is side-effecting only.
type LoggingSetup func(*env.Environment) error

// DoNotModifyLogging is the default hook: it leaves logging untouched.
func DoNotModifyLogging(*env.Environment) error { return nil }

// Components is the immutable result of a construction run: everything
// the serving and admin layers need, behind read-only accessors. There
// are no mutation methods; reconfiguration is modeled as constructing a
// new Components (optionally over the same stores, for hot reload).
type Components struct {
	environment *env.Environment
	services    map[string]apis.Service
	plugins     []apis.NamedPlugin
	routeDB     *store.Store[apis.RoutingRecord]
	providerDB  *store.Store[apis.ProviderRecord]
	buildCtx    *builder.Context
	group       *eventloop.Group
	startup     config.Startup
	log         *slog.Logger

	// ownsRouteDB/ownsProviderDB record whether Close tears the stores
	// down or leaves them to the supplying caller.
	ownsRouteDB    bool
	ownsProviderDB bool
}

// options collects the functional option state for New.
type options struct {
	cfg                 *config.Config
	rawConfig           []byte
	startup             *config.Startup
	meterProvider       metric.MeterProvider
	loggingSetup        LoggingSetup
	pluginFactories     []plugins.ConfiguredFactory
	servicesLoader      services.Loader
	additionalServices  map[string]apis.Service
	additionalFactories map[string]builder.ObjectFactory
	routeDB             *store.Store[apis.RoutingRecord]
	providerDB          *store.Store[apis.ProviderRecord]
	log                 *slog.Logger
}

// Option is a functional option that configures a construction run.
type Option func(*options)

// WithConfig supplies the configuration tree. Required (or WithConfigYAML).
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigYAML supplies the configuration as a YAML/JSON document,
// parsed during New.
func WithConfigYAML(data []byte) Option {
	return func(o *options) { o.rawConfig = data }
}

// WithStartup records where the process was started from.
func WithStartup(s config.Startup) Option {
	return func(o *options) { o.startup = &s }
}

// WithMeterProvider sets the metric registry. Defaults to a no-op provider.
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = p }
}

// WithLoggingSetup sets the logging-setup hook.
func WithLoggingSetup(setup LoggingSetup) Option {
	return func(o *options) {
		if setup != nil {
			o.loggingSetup = setup
		}
	}
}

// WithPluginFactories bypasses configuration-driven plugin discovery and
// loads exactly the given factories, in order.
func WithPluginFactories(factories []plugins.ConfiguredFactory) Option {
	return func(o *options) { o.pluginFactories = factories }
}

// WithPlugins loads the given already-constructed plugins, in map-key
// lexical order. Test convenience over WithPluginFactories.
func WithPlugins(m map[string]apis.Plugin) Option {
	factories := make([]plugins.ConfiguredFactory, 0, len(m))
	for name, p := range m {
		factories = append(factories, plugins.Stub(name, p))
	}
	// Deterministic load order.
	for i := 1; i < len(factories); i++ {
		for j := i; j > 0 && factories[j-1].Name > factories[j].Name; j-- {
			factories[j-1], factories[j] = factories[j], factories[j-1]
		}
	}
	return func(o *options) { o.pluginFactories = factories }
}

// WithServicesLoader substitutes the background-services loader.
func WithServicesLoader(l services.Loader) Option {
	return func(o *options) {
		if l != nil {
			o.servicesLoader = l
		}
	}
}

// WithAdditionalServices merges the given services over the loader's
// result; these win on name collision.
func WithAdditionalServices(m map[string]apis.Service) Option {
	return func(o *options) { o.additionalServices = m }
}

// WithAdditionalObjectTypes extends the routing-object factory registry.
// Builtin type names cannot be overridden: builtins win on collision.
func WithAdditionalObjectTypes(m map[string]builder.ObjectFactory) Option {
	return func(o *options) { o.additionalFactories = m }
}

// WithRouteDatabase builds over an existing routing store instead of a
// fresh one. This is the hot-reload path: redeclared names atomically
// replace, and stop, their previous objects. Close leaves a supplied
// store to its owner.
func WithRouteDatabase(db *store.Store[apis.RoutingRecord]) Option {
	return func(o *options) { o.routeDB = db }
}

// WithProviderDatabase builds over an existing provider store.
func WithProviderDatabase(db *store.Store[apis.ProviderRecord]) Option {
	return func(o *options) { o.providerDB = db }
}

// WithLogger sets the logger used for non-fatal construction-path events.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New runs the construction sequence and returns an immutable Components.
//
// The sequence is deterministic and all-or-nothing: environment, logging
// hook, event-loop group, plugin load, resolver context, routing-objects
// section, providers section, services load and merge. Any failure
// aborts the run, tears down everything this run created, and returns
// the error; no partially-initialized Components is ever returned.
func New(opts ...Option) (*Components, error) {
	o := options{
		loggingSetup:   DoNotModifyLogging,
		servicesLoader: services.FromConfig,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.cfg
	if cfg == nil && o.rawConfig != nil {
		parsed, err := config.ParseYAML(o.rawConfig)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}
	if cfg == nil {
		return nil, ErrNoConfiguration
	}

	startup := config.NewStartup()
	if o.startup != nil {
		startup = *o.startup
	}

	c := &Components{
		environment: env.New(cfg, env.WithMeterProvider(o.meterProvider)),
		startup:     startup,
		log:         o.log,
	}

	if err := o.loggingSetup(c.environment); err != nil {
		c.teardownPartial()
		return nil, fmt.Errorf("prx: logging setup: %w", err)
	}

	c.group = eventloop.NewPlatformGroup(eventLoopName, cfg.GetInt(KeyWorkers, 0))

	loaded, err := loadPlugins(c.environment, o.pluginFactories)
	if err != nil {
		c.teardownPartial()
		return nil, err
	}
	c.plugins = loaded
	for _, p := range loaded {
		c.environment.Runtime().Set("plugins."+p.Name, p.Plugin)
	}

	c.routeDB = o.routeDB
	c.ownsRouteDB = c.routeDB == nil
	if c.routeDB == nil {
		c.routeDB = store.New[apis.RoutingRecord]()
	}
	c.providerDB = o.providerDB
	c.ownsProviderDB = c.providerDB == nil
	if c.providerDB == nil {
		c.providerDB = store.New[apis.ProviderRecord]()
	}

	c.buildCtx = &builder.Context{
		Refs:            resolver.New(c.routeDB),
		Environment:     c.environment,
		RouteDB:         c.routeDB,
		Factories:       builder.MergeFactories(handlers.Builtins(), o.additionalFactories),
		Plugins:         loaded,
		Interceptors:    handlers.InterceptorBuiltins(),
		RequestTracking: false,
	}

	if err := c.buildRoutingObjects(cfg); err != nil {
		c.teardownPartial()
		return nil, err
	}
	if err := c.buildProviders(cfg); err != nil {
		c.teardownPartial()
		return nil, err
	}

	loadedServices, err := o.servicesLoader(c.environment, c.routeDB)
	if err != nil {
		c.teardownPartial()
		return nil, fmt.Errorf("prx: load services: %w", err)
	}
	c.services = services.Merge(loadedServices, o.additionalServices)

	return c, nil
}

// loadPlugins picks the discovery or explicit load path.
func loadPlugins(e *env.Environment, factories []plugins.ConfiguredFactory) ([]apis.NamedPlugin, error) {
	if factories == nil {
		return plugins.Load(e)
	}
	return plugins.LoadWithFactories(e, factories)
}

// buildRoutingObjects builds and publishes the routing-objects section,
// in declaration order. A replaced record's object is stopped after the
// replace completes; stop failures are logged and do not propagate.
func (c *Components) buildRoutingObjects(cfg *config.Config) error {
	defs, err := cfg.Definitions(SectionRoutingObjects)
	if err != nil {
		return err
	}
	for _, def := range defs {
		obj, err := builder.Build([]string{def.Name}, c.buildCtx, &def)
		if err != nil {
			return err
		}
		rec := apis.RoutingRecord{Type: def.Type, Tags: def.Tags, Config: def.Config, Object: obj}
		if prev, replaced := c.routeDB.Insert(def.Name, rec); replaced {
			c.stopQuietly(def.Name, prev.Object)
		}
	}
	return nil
}

// buildProviders builds and publishes the providers section against the
// fixed builtin provider-type registry.
func (c *Components) buildProviders(cfg *config.Config) error {
	defs, err := cfg.Definitions(SectionProviders)
	if err != nil {
		return err
	}
	for _, def := range defs {
		svc, err := providers.Build([]string{def.Name}, &def, providers.Builtins(), c.environment, c.routeDB)
		if err != nil {
			return err
		}
		rec := apis.ProviderRecord{Type: def.Type, Tags: def.Tags, Config: def.Config, Service: svc}
		if prev, replaced := c.providerDB.Insert(def.Name, rec); replaced {
			if err := prev.Service.Stop(); err != nil {
				c.log.Warn("failed to stop superseded provider", "name", def.Name, "err", err)
			}
		}
	}
	return nil
}

// stopQuietly stops a superseded live object without letting failures
// cross the store boundary.
func (c *Components) stopQuietly(name string, obj apis.RoutingObject) {
	if obj == nil {
		return
	}
	if err := obj.Stop(); err != nil {
		c.log.Warn("failed to stop superseded object", "name", name, "err", err)
	}
}

// teardownPartial releases what a failed construction run created.
func (c *Components) teardownPartial() {
	if c.group != nil {
		c.group.Shutdown()
	}
	if c.ownsRouteDB && c.routeDB != nil {
		c.routeDB.Close()
	}
	if c.ownsProviderDB && c.providerDB != nil {
		c.providerDB.Close()
	}
	c.environment.Close()
}

// Environment returns the shared environment.
func (c *Components) Environment() *env.Environment { return c.environment }

// Services returns the merged background services.
func (c *Components) Services() map[string]apis.Service { return c.services }

// Plugins returns the loaded plugins, in load order.
func (c *Components) Plugins() []apis.NamedPlugin { return c.plugins }

// RouteDatabase returns the routing object store.
func (c *Components) RouteDatabase() *store.Store[apis.RoutingRecord] { return c.routeDB }

// ProviderDatabase returns the provider object store.
func (c *Components) ProviderDatabase() *store.Store[apis.ProviderRecord] { return c.providerDB }

// BuildContext returns the resolver context shared by all builds
// performed through this instance.
func (c *Components) BuildContext() *builder.Context { return c.buildCtx }

// EventLoop returns the shared I/O worker group.
func (c *Components) EventLoop() *eventloop.Group { return c.group }

// Transport returns the platform transport the event loop selected.
func (c *Components) Transport() eventloop.Transport { return c.group.Transport() }

// StartupConfig returns the startup locations record.
func (c *Components) StartupConfig() config.Startup { return c.startup }

// Close tears the instance down: every published routing object and
// provider service is stopped (failures logged, not propagated), owned
// stores and the environment are closed, and the event-loop group is
// shut down. Stores supplied by the caller are left to their owner.
func (c *Components) Close() {
	for name, rec := range c.routeDB.Snapshot() {
		c.stopQuietly(name, rec.Object)
	}
	for name, rec := range c.providerDB.Snapshot() {
		if err := rec.Service.Stop(); err != nil {
			c.log.Warn("failed to stop provider", "name", name, "err", err)
		}
	}
	for name, svc := range c.services {
		if err := svc.Stop(); err != nil {
			c.log.Warn("failed to stop service", "name", name, "err", err)
		}
	}
	if c.ownsRouteDB {
		c.routeDB.Close()
	}
	if c.ownsProviderDB {
		c.providerDB.Close()
	}
	c.group.Shutdown()
	c.environment.Close()
}
