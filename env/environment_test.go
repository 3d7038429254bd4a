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

package env_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/prx/config"
	"dirpx.dev/prx/env"
)

func TestNewEnvironmentDefaults(t *testing.T) {
	cfg := config.FromMap(map[string]any{"proxy": map[string]any{"workers": 2}})
	e := env.New(cfg)
	defer e.Close()

	assert.NotEmpty(t, e.ID())
	assert.Same(t, cfg, e.Configuration())
	assert.NotNil(t, e.MeterProvider())
	assert.NotNil(t, e.Meter())
	assert.NotNil(t, e.Bus())
	assert.NotNil(t, e.Runtime())
	assert.Equal(t, "dev", e.Version().Release)
}

func TestEnvironmentIDsAreUnique(t *testing.T) {
	a := env.New(config.FromMap(nil))
	defer a.Close()
	b := env.New(config.FromMap(nil))
	defer b.Close()

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNilConfigurationGetsEmptyTree(t *testing.T) {
	e := env.New(nil)
	defer e.Close()

	require.NotNil(t, e.Configuration())
	assert.Equal(t, 3, e.Configuration().GetInt("anything", 3))
}

func TestWithVersion(t *testing.T) {
	v := env.Version{Release: "9.9.9", Commit: "abc", Date: "today"}
	e := env.New(config.FromMap(nil), env.WithVersion(v))
	defer e.Close()

	assert.Equal(t, v, e.Version())
	assert.Equal(t, "prx 9.9.9 (commit=abc, date=today)", v.String())
}

func TestBusCarriesEvents(t *testing.T) {
	e := env.New(config.FromMap(nil))
	defer e.Close()

	sub := e.Bus().Subscribe(context.Background())
	e.Bus().Publish("config.reloaded", "payload")

	select {
	case ev := <-sub:
		assert.Equal(t, "payload", ev.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus event")
	}
}

func TestRuntimeStore(t *testing.T) {
	r := env.NewRuntimeStore()

	_, ok := r.Get("plugins.auth")
	assert.False(t, ok)

	r.Set("plugins.auth", 1)
	r.Set("plugins.compress", 2)
	r.Set("plugins.auth", 3)

	v, ok := r.Get("plugins.auth")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"plugins.auth", "plugins.compress"}, r.Keys())

	snap := r.Snapshot()
	r.Set("later", 4)
	assert.NotContains(t, snap, "later")
}
