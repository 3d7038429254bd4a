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

package apis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/prx/apis"
)

type stopRecorder struct {
	apis.RoutingObject
	stopped int
	stopErr error
}

func (s *stopRecorder) Stop() error {
	s.stopped++
	return s.stopErr
}

func TestWrapDelegatesStopToInner(t *testing.T) {
	inner := &stopRecorder{
		RoutingObject: apis.HandlerFunc(func(context.Context, *apis.Request) (*apis.Response, error) {
			return &apis.Response{Status: 204}, nil
		}),
	}

	layer := apis.Wrap(inner, func(ctx context.Context, req *apis.Request) (*apis.Response, error) {
		return inner.Handle(ctx, req)
	})

	resp, err := layer.Handle(context.Background(), &apis.Request{Method: "GET", Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)

	require.NoError(t, layer.Stop())
	assert.Equal(t, 1, inner.stopped)
}

func TestWrapPropagatesStopError(t *testing.T) {
	stopErr := errors.New("boom")
	inner := &stopRecorder{
		RoutingObject: apis.HandlerFunc(func(context.Context, *apis.Request) (*apis.Response, error) {
			return nil, nil
		}),
		stopErr: stopErr,
	}

	layer := apis.Wrap(inner, inner.Handle)
	assert.ErrorIs(t, layer.Stop(), stopErr)
}

func TestConstructionErrorRendersDottedPath(t *testing.T) {
	err := &apis.ConstructionError{
		Path: []string{"root", "routes./api", "handler"},
		Type: "Backend",
		Err:  apis.ErrBadConfig,
	}

	assert.Contains(t, err.Error(), `"root.routes./api.handler"`)
	assert.ErrorIs(t, err, apis.ErrBadConfig)
}

func TestUnresolvedReferenceError(t *testing.T) {
	bare := &apis.UnresolvedReferenceError{Name: "backend"}
	assert.Contains(t, bare.Error(), `"backend"`)

	placed := &apis.UnresolvedReferenceError{Name: "backend", Path: []string{"root", "handler"}}
	assert.Contains(t, placed.Error(), `"root.handler"`)
}

func TestDottedPath(t *testing.T) {
	assert.Equal(t, "", apis.DottedPath(nil))
	assert.Equal(t, "root", apis.DottedPath([]string{"root"}))
	assert.Equal(t, "a.b.c", apis.DottedPath([]string{"a", "b", "c"}))
}
