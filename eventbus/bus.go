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

// Package eventbus provides a small asynchronous publish/subscribe bus.
//
// Delivery is decoupled from publication by a single background worker:
// Publish enqueues and returns immediately, the worker fans events out to
// subscribers in publication order. One bus, one worker; the bus lifecycle
// is scoped to whoever constructed it (typically one components instance),
// never shared process-wide.
package eventbus

import (
	"context"
	"sync"
	"time"
)

// DefaultBuffer is the default size of the publish queue and of each
// subscriber channel.
const DefaultBuffer = 64

// Kind labels the event being published.
type Kind string

// Event is a published event with a typed payload.
type Event[T any] struct {
	// Kind labels the event.
	Kind Kind
	// Payload is the event payload.
	Payload T
	// At is the publication time.
	At time.Time
}

// Bus is an asynchronous pub/sub bus with a single delivery worker.
type Bus[T any] struct {
	// mu guards subs and closed.
	mu     sync.RWMutex
	subs   map[chan Event[T]]struct{}
	closed bool

	// queue feeds the delivery worker.
	queue chan Event[T]
	// drained is closed once the worker has exited.
	drained chan struct{}

	buffer int
}

// New constructs a bus with the default queue/subscriber buffer and starts
// its delivery worker.
func New[T any]() *Bus[T] {
	return NewWithBuffer[T](DefaultBuffer)
}

// NewWithBuffer constructs a bus with a custom buffer size and starts its
// delivery worker.
func NewWithBuffer[T any](size int) *Bus[T] {
	if size <= 0 {
		size = DefaultBuffer
	}
	b := &Bus[T]{
		subs:    make(map[chan Event[T]]struct{}),
		queue:   make(chan Event[T], size),
		drained: make(chan struct{}),
		buffer:  size,
	}
	go b.deliver()
	return b
}

// deliver is the single background worker: it drains the queue and fans
// each event out to current subscribers, dropping per-subscriber when a
// subscriber channel is full so one slow consumer never blocks the rest.
func (b *Bus[T]) deliver() {
	defer close(b.drained)
	for ev := range b.queue {
		b.mu.RLock()
		for sub := range b.subs {
			select {
			case sub <- ev:
			default:
				// Subscriber buffer full: drop for this subscriber.
			}
		}
		b.mu.RUnlock()
	}
}

// Publish enqueues an event for asynchronous delivery. It never blocks:
// when the queue is full the event is dropped. Publishing on a closed bus
// is a no-op.
func (b *Bus[T]) Publish(kind Kind, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	select {
	case b.queue <- Event[T]{Kind: kind, Payload: payload, At: time.Now()}:
	default:
		// Queue full: drop rather than block the publisher.
	}
}

// Subscribe registers a new subscriber channel. The channel is closed and
// deregistered when ctx is cancelled, or when the bus closes.
func (b *Bus[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := make(chan Event[T], b.buffer)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.drained:
			// Bus closed; Close tears down all subscriber channels.
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops the delivery worker, waits for queued events to drain, and
// closes all subscriber channels. Close is idempotent.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	// Let the worker drain the queue before tearing down subscribers.
	<-b.drained

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}
