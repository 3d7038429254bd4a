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

// Package plugins loads externally supplied plugins at startup.
//
// Two load paths exist. The default path discovers plugins from the
// configuration's "plugins" section, resolving each declared plugin's
// kind against the process-wide kind registry. The override path takes an
// explicit, already-configured factory list from the caller (used by
// embedding binaries and tests). Either way, any single failure aborts
// the load: there is no skip-and-continue policy for plugins.
package plugins

import (
	"fmt"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/env"
)

// Factory constructs a plugin from its config payload.
type Factory func(e *env.Environment, cfg map[string]any) (apis.Plugin, error)

// ConfiguredFactory pairs a plugin name with the factory and config that
// produce it. The explicit load path consumes a list of these.
type ConfiguredFactory struct {
	// Name is the plugin's name.
	Name string
	// Factory constructs the plugin.
	Factory Factory
	// Config is the plugin's config payload. May be nil.
	Config map[string]any
}

// Stub wraps an already-constructed plugin as a ConfiguredFactory.
// Test convenience.
func Stub(name string, p apis.Plugin) ConfiguredFactory {
	return ConfiguredFactory{
		Name:    name,
		Factory: func(*env.Environment, map[string]any) (apis.Plugin, error) { return p, nil },
	}
}

// pluginsSection is the wire shape of the configuration's plugins section.
type pluginsSection struct {
	// Active names the plugins to load, in load order.
	Active []string `mapstructure:"active"`
	// All declares every known plugin.
	All map[string]pluginSpec `mapstructure:"all"`
}

// pluginSpec declares one plugin: its registered kind plus config.
type pluginSpec struct {
	Kind   string         `mapstructure:"kind"`
	Config map[string]any `mapstructure:"config"`
}

// Load discovers and loads plugins from e's configuration. A missing
// plugins section yields an empty list; any declared-but-unloadable
// plugin is fatal.
func Load(e *env.Environment) ([]apis.NamedPlugin, error) {
	var section pluginsSection
	if err := e.Configuration().Decode("plugins", &section); err != nil {
		return nil, err
	}

	loaded := make([]apis.NamedPlugin, 0, len(section.Active))
	for _, name := range section.Active {
		spec, ok := section.All[name]
		if !ok {
			return nil, fmt.Errorf("prx(plugins): active plugin %q is not declared", name)
		}
		factory, ok := kinds.lookup(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("prx(plugins): plugin %q: unknown kind %q", name, spec.Kind)
		}
		p, err := factory(e, spec.Config)
		if err != nil {
			return nil, fmt.Errorf("prx(plugins): load %q: %w", name, err)
		}
		loaded = append(loaded, apis.NamedPlugin{Name: name, Plugin: p})
	}
	return loaded, nil
}

// LoadWithFactories loads plugins from an explicit factory list, in list
// order, bypassing configuration discovery.
func LoadWithFactories(e *env.Environment, factories []ConfiguredFactory) ([]apis.NamedPlugin, error) {
	loaded := make([]apis.NamedPlugin, 0, len(factories))
	for _, cf := range factories {
		if cf.Factory == nil {
			return nil, fmt.Errorf("prx(plugins): %q: %w", cf.Name, ErrNilFactory)
		}
		p, err := cf.Factory(e, cf.Config)
		if err != nil {
			return nil, fmt.Errorf("prx(plugins): load %q: %w", cf.Name, err)
		}
		loaded = append(loaded, apis.NamedPlugin{Name: cf.Name, Plugin: p})
	}
	return loaded, nil
}
