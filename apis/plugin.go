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

// Plugin is an externally supplied capability bundle that contributes a
// wrapping layer to every routing object built through a components
// instance. Plugins are loaded once at startup, in configuration order,
// and that order is the order their layers are applied in.
type Plugin interface {
	// Wrap layers this plugin around next, returning the composed object.
	// The returned object delegates to next for requests it does not
	// fully handle itself.
	Wrap(next RoutingObject) RoutingObject
}

// PluginFunc adapts a plain wrapping function to Plugin.
type PluginFunc func(next RoutingObject) RoutingObject

// Wrap implements Plugin.
func (f PluginFunc) Wrap(next RoutingObject) RoutingObject { return f(next) }

// NamedPlugin pairs a loaded plugin with its configured name. The name is
// the key the plugin is published under in the environment's runtime store
// ("plugins.<name>") and the key Pipeline handlers reference it by.
type NamedPlugin struct {
	// Name is the plugin's configured name.
	Name string
	// Plugin is the loaded plugin.
	Plugin Plugin
}
