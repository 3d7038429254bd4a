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

package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/builder"
	"dirpx.dev/prx/handlers"
	"dirpx.dev/prx/resolver"
	"dirpx.dev/prx/store"
)

// testContext assembles a build context with no interceptors or plugins so
// handler behavior can be observed unwrapped.
func testContext(db *store.Store[apis.RoutingRecord]) *builder.Context {
	if db == nil {
		db = store.New[apis.RoutingRecord]()
	}
	return &builder.Context{
		Refs:         resolver.New(db),
		RouteDB:      db,
		Factories:    handlers.Builtins(),
		Interceptors: map[string]builder.InterceptorFactory{},
	}
}

func TestStaticResponder(t *testing.T) {
	ctx := testContext(nil)

	obj, err := builder.Build([]string{"root"}, ctx, &apis.Definition{
		Name: "root",
		Type: handlers.TypeStaticResponder,
		Config: map[string]any{
			"status":  201,
			"content": "created",
			"headers": map[string]string{"Content-Type": "text/plain"},
		},
	})
	require.NoError(t, err)

	resp, err := obj.Handle(context.Background(), &apis.Request{Method: "GET", Path: "/anything"})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)
	assert.Equal(t, "created", string(resp.Body))
	assert.Equal(t, "text/plain", resp.Header["Content-Type"])
}

func TestStaticResponderDefaultsToOK(t *testing.T) {
	ctx := testContext(nil)

	obj, err := builder.Build([]string{"root"}, ctx, &apis.Definition{
		Type:   handlers.TypeStaticResponder,
		Config: map[string]any{"content": "hi"},
	})
	require.NoError(t, err)

	resp, err := obj.Handle(context.Background(), &apis.Request{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Nil(t, resp.Header)
}

func TestStaticResponderRejectsBadStatus(t *testing.T) {
	ctx := testContext(nil)

	for _, status := range []int{99, 600, -1} {
		_, err := builder.Build([]string{"root"}, ctx, &apis.Definition{
			Type:   handlers.TypeStaticResponder,
			Config: map[string]any{"status": status},
		})
		assert.ErrorIs(t, err, apis.ErrBadConfig, "status %d", status)
	}
}

func TestStaticResponderRejectsMalformedConfig(t *testing.T) {
	ctx := testContext(nil)

	_, err := builder.Build([]string{"root"}, ctx, &apis.Definition{
		Type:   handlers.TypeStaticResponder,
		Config: map[string]any{"status": "not-a-number"},
	})
	assert.ErrorIs(t, err, apis.ErrBadConfig)
}
