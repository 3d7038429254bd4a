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

// Package eventloop provides the shared I/O worker group the components
// instance owns for the process lifetime. Downstream network users submit
// work to it; this subsystem only sizes it from configuration and records
// which platform transport it selected.
package eventloop

import (
	"errors"
	"runtime"
	"sync"
)

// Transport identifies the socket readiness mechanism selected for this
// platform. Downstream I/O users consume the token; nothing in this
// subsystem acts on it.
type Transport string

const (
	// TransportEpoll is used on Linux.
	TransportEpoll Transport = "epoll"
	// TransportKqueue is used on BSD-derived systems.
	TransportKqueue Transport = "kqueue"
	// TransportPoll is the portable fallback.
	TransportPoll Transport = "poll"
)

// ErrClosed is returned when submitting to a shut-down group.
var ErrClosed = errors.New("prx(eventloop): group is shut down")

// taskBuffer bounds the submit queue so bursty producers do not block
// immediately on a busy group.
const taskBuffer = 128

// Group is a fixed-size pool of worker goroutines executing submitted
// tasks. It is created once per components instance and shared by all
// downstream I/O users for the process lifetime.
type Group struct {
	name      string
	transport Transport
	workers   int

	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed.
	mu     sync.Mutex
	closed bool
}

// NewPlatformGroup constructs a group named name with the given worker
// count, selecting the transport for the current platform. A non-positive
// worker count defaults to GOMAXPROCS.
func NewPlatformGroup(name string, workers int) *Group {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g := &Group{
		name:      name,
		transport: platformTransport(),
		workers:   workers,
		tasks:     make(chan func(), taskBuffer),
	}
	g.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go g.worker()
	}
	return g
}

// platformTransport selects the readiness mechanism for runtime.GOOS.
func platformTransport() Transport {
	switch runtime.GOOS {
	case "linux", "android":
		return TransportEpoll
	case "darwin", "freebsd", "netbsd", "openbsd", "dragonfly":
		return TransportKqueue
	default:
		return TransportPoll
	}
}

// worker drains the task queue until shutdown.
func (g *Group) worker() {
	defer g.wg.Done()
	for task := range g.tasks {
		task()
	}
}

// Submit queues task for execution on one of the group's workers. It
// blocks when the queue is full and fails with ErrClosed after Shutdown.
func (g *Group) Submit(task func()) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	// Enqueue under the lock so Shutdown cannot close the channel
	// between the check and the send.
	g.tasks <- task
	g.mu.Unlock()
	return nil
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

// Transport returns the platform transport selected at construction.
func (g *Group) Transport() Transport { return g.transport }

// Workers returns the worker count.
func (g *Group) Workers() int { return g.workers }

// Shutdown stops accepting tasks, runs what is already queued, and waits
// for all workers to exit. Idempotent.
func (g *Group) Shutdown() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	close(g.tasks)
	g.mu.Unlock()

	g.wg.Wait()
}
