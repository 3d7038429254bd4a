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

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/prx/config"
)

const sampleYAML = `
proxy:
  workers: 4
  compress: true
admin:
  address: "127.0.0.1:9000"
routingObjects:
  zebra:
    type: StaticResponder
    config:
      status: 201
      content: "zebra"
  apple:
    type: StaticResponder
    tags: [edge, canary]
    config:
      content: "apple"
  mango:
    type: PathPrefixRouter
    config:
      routes:
        /: zebra
`

func TestGetters(t *testing.T) {
	cfg, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.GetInt("proxy.workers", 0))
	assert.Equal(t, 99, cfg.GetInt("proxy.missing", 99))
	assert.Equal(t, "127.0.0.1:9000", cfg.GetString("admin.address", ""))
	assert.Equal(t, "fallback", cfg.GetString("admin.missing", "fallback"))
	assert.True(t, cfg.GetBool("proxy.compress", false))
	assert.False(t, cfg.GetBool("proxy.missing", false))

	// A non-convertible value falls back to the default.
	assert.Equal(t, 7, cfg.GetInt("admin.address", 7))

	v, ok := cfg.Get("proxy.workers")
	require.True(t, ok)
	assert.Equal(t, 4, v)
	_, ok = cfg.Get("proxy.workers.deeper")
	assert.False(t, ok)
}

func TestSection(t *testing.T) {
	cfg, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	admin, ok := cfg.Section("admin")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:9000", admin["address"])

	_, ok = cfg.Section("nope")
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	cfg, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	var proxy struct {
		Workers  int  `mapstructure:"workers"`
		Compress bool `mapstructure:"compress"`
	}
	require.NoError(t, cfg.Decode("proxy", &proxy))
	assert.Equal(t, 4, proxy.Workers)
	assert.True(t, proxy.Compress)

	// Missing subtree leaves the target untouched.
	require.NoError(t, cfg.Decode("nope", &proxy))
	assert.Equal(t, 4, proxy.Workers)
}

func TestDefinitionsPreserveDeclarationOrder(t *testing.T) {
	cfg, err := config.ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	defs, err := cfg.Definitions("routingObjects")
	require.NoError(t, err)
	require.Len(t, defs, 3)

	// Document order, not lexical order: backward-only reference
	// resolution depends on it.
	assert.Equal(t, "zebra", defs[0].Name)
	assert.Equal(t, "apple", defs[1].Name)
	assert.Equal(t, "mango", defs[2].Name)

	assert.Equal(t, "StaticResponder", defs[0].Type)
	assert.Equal(t, 201, defs[0].Config["status"])
	assert.Equal(t, []string{"edge", "canary"}, defs[1].Tags)
	assert.True(t, defs[1].HasTag("canary"))
	assert.False(t, defs[1].HasTag("prod"))
}

func TestDefinitionsMissingSection(t *testing.T) {
	cfg, err := config.ParseYAML([]byte("proxy:\n  workers: 1\n"))
	require.NoError(t, err)

	defs, err := cfg.Definitions("routingObjects")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestDefinitionsRejectNonMappingSection(t *testing.T) {
	cfg, err := config.ParseYAML([]byte("routingObjects:\n  - one\n  - two\n"))
	require.NoError(t, err)

	_, err = cfg.Definitions("routingObjects")
	require.ErrorIs(t, err, config.ErrNotMapping)
}

func TestFromMapDefinitionsSortedByName(t *testing.T) {
	cfg := config.FromMap(map[string]any{
		"routingObjects": map[string]any{
			"zebra": map[string]any{"type": "StaticResponder"},
			"apple": map[string]any{"type": "StaticResponder"},
		},
	})

	defs, err := cfg.Definitions("routingObjects")
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "apple", defs[0].Name)
	assert.Equal(t, "zebra", defs[1].Name)
}

func TestParseYAMLRejectsMalformedDocument(t *testing.T) {
	_, err := config.ParseYAML([]byte("a: [unclosed"))
	require.Error(t, err)
}

func TestStartupDefaults(t *testing.T) {
	s := config.NewStartup()
	assert.Equal(t, config.DefaultHome, s.Home)
	assert.Equal(t, "config.yaml", s.ConfigFile)
	assert.Equal(t, "logging.yaml", s.LogConfigFile)

	s = config.NewStartup(
		config.WithHome("/opt/prx"),
		config.WithConfigFile("proxy.yaml"),
		config.WithLogConfigFile("log.yaml"),
	)
	assert.Equal(t, "/opt/prx", s.Home)
	assert.Equal(t, "proxy.yaml", s.ConfigFile)
	assert.Equal(t, "log.yaml", s.LogConfigFile)
}
