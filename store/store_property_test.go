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

package store_test

import (
	"maps"
	"testing"

	"pgregory.net/rapid"

	"dirpx.dev/prx/store"
)

// TestStoreMatchesMapModel drives the store through random operation
// sequences and checks it against a plain map after every step.
func TestStoreMatchesMapModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := store.New[int]()
		defer s.Close()
		model := map[string]int{}

		name := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"})

		t.Repeat(map[string]func(*rapid.T){
			"insert": func(t *rapid.T) {
				n := name.Draw(t, "name")
				v := rapid.IntRange(0, 1000).Draw(t, "value")

				wantPrev, wantReplaced := model[n]
				prev, replaced := s.Insert(n, v)
				if replaced != wantReplaced || prev != wantPrev {
					t.Fatalf("Insert(%q) = (%d, %v), want (%d, %v)", n, prev, replaced, wantPrev, wantReplaced)
				}
				model[n] = v
			},
			"remove": func(t *rapid.T) {
				n := name.Draw(t, "name")

				wantPrev, wantRemoved := model[n]
				prev, removed := s.Remove(n)
				if removed != wantRemoved || prev != wantPrev {
					t.Fatalf("Remove(%q) = (%d, %v), want (%d, %v)", n, prev, removed, wantPrev, wantRemoved)
				}
				delete(model, n)
			},
			"get": func(t *rapid.T) {
				n := name.Draw(t, "name")

				want, wantOK := model[n]
				got, ok := s.Get(n)
				if ok != wantOK || got != want {
					t.Fatalf("Get(%q) = (%d, %v), want (%d, %v)", n, got, ok, want, wantOK)
				}
			},
			"": func(t *rapid.T) {
				if s.Len() != len(model) {
					t.Fatalf("Len() = %d, want %d", s.Len(), len(model))
				}
				if snap := s.Snapshot(); !maps.Equal(snap, model) {
					t.Fatalf("Snapshot() = %v, want %v", snap, model)
				}
			},
		})
	})
}
