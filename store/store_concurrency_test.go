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
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"dirpx.dev/prx/store"
)

// TestConcurrentReadersSeeConsistentSnapshots hammers the store with many
// reader goroutines while a single administrative writer replaces entries,
// mirroring the intended serving-vs-reload access pattern. Run with -race.
func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := store.New[int]()
	defer s.Close()

	const names = 8
	const rounds = 500

	// Seed every name at generation 0.
	for i := 0; i < names; i++ {
		s.Insert(fmt.Sprintf("obj-%d", i), 0)
	}

	var stop atomic.Bool
	var torn atomic.Int64
	workers := runtime.GOMAXPROCS(0) * 4

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for !stop.Load() {
				// Snapshot must always hold every name: the writer only
				// replaces, never removes.
				snap := s.Snapshot()
				if len(snap) != names {
					torn.Add(1)
				}
				if _, ok := s.Get("obj-0"); !ok {
					torn.Add(1)
				}
			}
		}()
	}

	for gen := 1; gen <= rounds; gen++ {
		for i := 0; i < names; i++ {
			prev, replaced := s.Insert(fmt.Sprintf("obj-%d", i), gen)
			if !replaced {
				t.Errorf("Insert(obj-%d, %d) replaced nothing, want previous generation", i, gen)
			}
			if prev != gen-1 {
				t.Errorf("Insert(obj-%d, %d) returned prev %d, want %d", i, gen, prev, gen-1)
			}
		}
	}
	stop.Store(true)
	wg.Wait()

	if n := torn.Load(); n != 0 {
		t.Fatalf("readers observed %d inconsistent snapshots, want 0", n)
	}
	for i := 0; i < names; i++ {
		if v, _ := s.Get(fmt.Sprintf("obj-%d", i)); v != rounds {
			t.Fatalf("Get(obj-%d) = %d, want %d", i, v, rounds)
		}
	}
}

// TestWatchOrderMatchesMutationOrder runs concurrent writers against one
// key and checks the watch stream against the true mutation order, which
// each writer's returned prev value reconstructs as a replacement chain.
// The event count stays below the bus buffer so nothing is dropped.
func TestWatchOrderMatchesMutationOrder(t *testing.T) {
	s := store.New[int]()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := s.Watch(ctx)

	const writers = 4
	const perWriter = 15

	var mu sync.Mutex
	successor := map[int]int{} // prev value -> inserted value
	first := -1

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				value := id*perWriter + i + 1
				prev, replaced := s.Insert("k", value)

				mu.Lock()
				if replaced {
					successor[prev] = value
				} else {
					first = value
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	// Replay the chain and demand the stream delivered it verbatim.
	want := first
	for i := 0; i < writers*perWriter; i++ {
		ev := receive(t, events)
		if ev.Payload.Value != want {
			t.Fatalf("event %d carried value %d, want %d", i, ev.Payload.Value, want)
		}
		want = successor[want]
	}
}

// TestConcurrentWritersSerialize checks that interleaved writers never lose
// an update: every insert's returned prev forms an unbroken chain.
func TestConcurrentWritersSerialize(t *testing.T) {
	s := store.New[int]()
	defer s.Close()

	const perWorker = 200
	workers := runtime.GOMAXPROCS(0) * 4

	var replaced atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, rep := s.Insert("shared", id*perWorker+i); rep {
					replaced.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	// Exactly one insert found the slot empty.
	want := int64(workers*perWorker - 1)
	if got := replaced.Load(); got != want {
		t.Fatalf("replaced count = %d, want %d", got, want)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}
