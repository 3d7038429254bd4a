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

package eventbus_test

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/prx/eventbus"
)

// TestConcurrentPublishersAndSubscribers hammers the bus from many
// goroutines while subscribers churn. The bus drops on backpressure, so
// the test asserts absence of races and deadlocks, not lossless delivery.
// Run with -race.
func TestConcurrentPublishersAndSubscribers(t *testing.T) {
	b := eventbus.NewWithBuffer[int](256)

	workers := runtime.GOMAXPROCS(0) * 4
	const perWorker = 200

	var wg sync.WaitGroup
	wg.Add(workers * 2)

	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b.Publish("n", id*perWorker+i)
			}
		}(w)

		go func() {
			defer wg.Done()
			ctx, cancel := context.WithCancel(context.Background())
			sub := b.Subscribe(ctx)
			for i := 0; i < 50; i++ {
				select {
				case _, ok := <-sub:
					if !ok {
						cancel()
						return
					}
				default:
				}
			}
			cancel()
			// Drain until deregistration closes the channel.
			for range sub {
			}
		}()
	}

	wg.Wait()
	b.Close()
}

// TestCloseRacesWithPublish checks Close against in-flight publishers.
func TestCloseRacesWithPublish(t *testing.T) {
	for i := 0; i < 50; i++ {
		b := eventbus.New[int]()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Publish("n", j)
			}
		}()
		go func() {
			defer wg.Done()
			b.Close()
		}()
		wg.Wait()
	}
}
