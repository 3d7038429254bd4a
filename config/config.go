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

// Package config models the declarative configuration tree the proxy is
// composed from: a nested, JSON-compatible document with optional
// "routingObjects" and "providers" sections plus free-form platform
// settings.
//
// The tree is parsed once per load (or reload) attempt and is immutable
// afterwards. Dotted-path getters serve scalar settings; Definitions
// extracts the ordered object sections the graph builders consume.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"dirpx.dev/prx/apis"
)

var (
	// ErrNotMapping is returned when a section exists but is not a mapping
	// of names to object definitions.
	ErrNotMapping = errors.New("prx(config): section is not a name to definition mapping")
)

// Config is an immutable configuration tree.
type Config struct {
	// root is the decoded tree.
	root map[string]any
	// doc is the parsed YAML document when the tree came from ParseYAML.
	// It preserves mapping order, which Definitions relies on. Nil when
	// the tree was built FromMap.
	doc *yaml.Node
}

// ParseYAML parses a YAML (or JSON; YAML is a superset) document into a
// Config. Mapping order of the document is preserved for Definitions.
func ParseYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("prx(config): parse: %w", err)
	}

	root := map[string]any{}
	if len(doc.Content) > 0 {
		if err := doc.Content[0].Decode(&root); err != nil {
			return nil, fmt.Errorf("prx(config): parse: %w", err)
		}
	}
	return &Config{root: root, doc: &doc}, nil
}

// FromMap wraps an already-decoded tree. Section order is not preserved;
// Definitions falls back to lexical name order for determinism.
func FromMap(m map[string]any) *Config {
	if m == nil {
		m = map[string]any{}
	}
	return &Config{root: m}
}

// Get traverses the tree along a dotted path ("proxy.workers") and returns
// the value found there.
func (c *Config) Get(path string) (any, bool) {
	var cur any = c.root
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string value at path, or def when absent or
// not convertible.
func (c *Config) GetString(path, def string) string {
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// GetInt returns the integer value at path, or def when absent or
// not convertible.
func (c *Config) GetInt(path string, def int) int {
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the boolean value at path, or def when absent or
// not convertible.
func (c *Config) GetBool(path string, def bool) bool {
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Section returns the named top-level subtree, if present and a mapping.
func (c *Config) Section(name string) (map[string]any, bool) {
	v, ok := c.root[name]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Decode decodes the subtree at path into out via mapstructure. A missing
// subtree leaves out untouched and returns nil.
func (c *Config) Decode(path string, out any) error {
	v, ok := c.Get(path)
	if !ok {
		return nil
	}
	if err := mapstructure.Decode(v, out); err != nil {
		return fmt.Errorf("prx(config): decode %q: %w", path, err)
	}
	return nil
}

// definitionPayload is the wire shape of one object definition entry.
type definitionPayload struct {
	Type   string         `mapstructure:"type" yaml:"type"`
	Tags   []string       `mapstructure:"tags" yaml:"tags"`
	Config map[string]any `mapstructure:"config" yaml:"config"`
}

// Definitions extracts the named top-level section as an ordered list of
// object definitions. For YAML-parsed configs the document's declaration
// order is preserved; that order is what makes backward-only reference
// resolution well defined. A missing section yields an empty list.
func (c *Config) Definitions(section string) ([]apis.Definition, error) {
	if c.doc != nil {
		return c.definitionsFromDoc(section)
	}
	return c.definitionsFromMap(section)
}

// definitionsFromDoc walks the retained YAML node to keep mapping order.
func (c *Config) definitionsFromDoc(section string) ([]apis.Definition, error) {
	node := sectionNode(c.doc, section)
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %q", ErrNotMapping, section)
	}

	defs := make([]apis.Definition, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var p definitionPayload
		if err := node.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("prx(config): definition %q in %q: %w", name, section, err)
		}
		defs = append(defs, apis.Definition{Name: name, Type: p.Type, Tags: p.Tags, Config: p.Config})
	}
	return defs, nil
}

// definitionsFromMap decodes from the plain tree, sorting names for
// deterministic order.
func (c *Config) definitionsFromMap(section string) ([]apis.Definition, error) {
	v, ok := c.root[section]
	if !ok {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotMapping, section)
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]apis.Definition, 0, len(names))
	for _, name := range names {
		var p definitionPayload
		if err := mapstructure.Decode(m[name], &p); err != nil {
			return nil, fmt.Errorf("prx(config): definition %q in %q: %w", name, section, err)
		}
		defs = append(defs, apis.Definition{Name: name, Type: p.Type, Tags: p.Tags, Config: p.Config})
	}
	return defs, nil
}

// sectionNode finds the value node of a top-level mapping key.
func sectionNode(doc *yaml.Node, section string) *yaml.Node {
	if doc == nil || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == section {
			return root.Content[i+1]
		}
	}
	return nil
}
