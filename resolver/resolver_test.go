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

package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/resolver"
	"dirpx.dev/prx/store"
)

func TestResolvePublishedObject(t *testing.T) {
	db := store.New[apis.RoutingRecord]()
	defer db.Close()

	obj := apis.HandlerFunc(func(context.Context, *apis.Request) (*apis.Response, error) {
		return &apis.Response{Status: 200}, nil
	})
	db.Insert("backend", apis.RoutingRecord{Type: "StaticResponder", Object: obj})

	refs := resolver.New(db)
	got, err := refs.Resolve("backend")
	require.NoError(t, err)

	resp, err := got.Handle(context.Background(), &apis.Request{})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestResolveUnknownNameFails(t *testing.T) {
	refs := resolver.New(store.New[apis.RoutingRecord]())

	_, err := refs.Resolve("ghost")
	var unres *apis.UnresolvedReferenceError
	require.ErrorAs(t, err, &unres)
	assert.Equal(t, "ghost", unres.Name)
}

func TestResolveTracksReplacement(t *testing.T) {
	db := store.New[apis.RoutingRecord]()
	defer db.Close()
	refs := resolver.New(db)

	first := apis.HandlerFunc(func(context.Context, *apis.Request) (*apis.Response, error) {
		return &apis.Response{Status: 200}, nil
	})
	second := apis.HandlerFunc(func(context.Context, *apis.Request) (*apis.Response, error) {
		return &apis.Response{Status: 503}, nil
	})

	db.Insert("backend", apis.RoutingRecord{Object: first})
	db.Insert("backend", apis.RoutingRecord{Object: second})

	got, err := refs.Resolve("backend")
	require.NoError(t, err)
	resp, err := got.Handle(context.Background(), &apis.Request{})
	require.NoError(t, err)
	assert.Equal(t, 503, resp.Status)
}
