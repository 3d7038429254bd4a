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

package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"dirpx.dev/prx/apis"
	"dirpx.dev/prx/env"
	"dirpx.dev/prx/store"
)

// TypeHealthCheckMonitor is the builtin health-check provider type name.
const TypeHealthCheckMonitor = "HealthCheckMonitor"

// ErrAlreadyStarted is returned when Start is called on a running monitor.
var ErrAlreadyStarted = errors.New("prx(providers): monitor already started")

// healthCheckConfig is the HealthCheckMonitor config payload.
type healthCheckConfig struct {
	// Objects is the tag selecting the routing objects to probe.
	Objects string `mapstructure:"objects"`
	// Path is the probe request path.
	Path string `mapstructure:"path"`
	// IntervalMillis is the probe period.
	IntervalMillis int `mapstructure:"intervalMillis"`
	// TimeoutMillis bounds each probe.
	TimeoutMillis int `mapstructure:"timeoutMillis"`
	// UnhealthyThreshold is the consecutive-failure count that marks an
	// object unhealthy.
	UnhealthyThreshold int `mapstructure:"unhealthyThreshold"`
}

// buildHealthCheckMonitor validates config and constructs the monitor.
func buildHealthCheckMonitor(_ []string, def *apis.Definition, e *env.Environment, routeDB *store.Store[apis.RoutingRecord]) (apis.Service, error) {
	var cfg healthCheckConfig
	if err := mapstructure.Decode(def.Config, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apis.ErrBadConfig, err)
	}
	if cfg.Objects == "" {
		return nil, fmt.Errorf("%w: missing objects tag", apis.ErrBadConfig)
	}
	if cfg.Path == "" {
		cfg.Path = "/health"
	}
	if cfg.IntervalMillis <= 0 {
		cfg.IntervalMillis = 5000
	}
	if cfg.TimeoutMillis <= 0 {
		cfg.TimeoutMillis = 2000
	}
	if cfg.UnhealthyThreshold <= 0 {
		cfg.UnhealthyThreshold = 2
	}

	probes, err := e.Meter().Int64Counter("prx.healthcheck.probes",
		metric.WithDescription("Health probes performed, by object and outcome."))
	if err != nil {
		return nil, err
	}

	return &HealthCheckMonitor{
		cfg:      cfg,
		routeDB:  routeDB,
		probes:   probes,
		log:      slog.Default().With("provider", TypeHealthCheckMonitor, "objects", cfg.Objects),
		failures: map[string]int{},
	}, nil
}

// HealthCheckMonitor periodically probes every routing object carrying
// the configured tag and tracks per-object health by consecutive probe
// failures. Probe results are recorded through the environment's metric
// registry; health transitions are logged.
type HealthCheckMonitor struct {
	cfg     healthCheckConfig
	routeDB *store.Store[apis.RoutingRecord]
	probes  metric.Int64Counter
	log     *slog.Logger

	// mu guards lifecycle state and failure counts.
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	failures map[string]int
	// unhealthy marks objects past the failure threshold.
	unhealthy map[string]bool
}

// Ensure HealthCheckMonitor implements apis.Service.
var _ apis.Service = (*HealthCheckMonitor)(nil)

// Start begins probing on the configured interval.
func (m *HealthCheckMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.unhealthy = map[string]bool{}

	// The goroutine gets its own reference: Stop nils the field and must
	// not race the loop's teardown.
	go m.run(ctx, done)
	return nil
}

// Stop terminates probing and waits for the probe goroutine to exit.
// Stopping a never-started monitor is a no-op.
func (m *HealthCheckMonitor) Stop() error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// run is the probe loop.
func (m *HealthCheckMonitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Duration(m.cfg.IntervalMillis) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeAll(ctx)
		}
	}
}

// probeAll probes every currently-published object carrying the tag.
func (m *HealthCheckMonitor) probeAll(ctx context.Context) {
	for name, rec := range m.routeDB.Snapshot() {
		tagged := false
		for _, tag := range rec.Tags {
			if tag == m.cfg.Objects {
				tagged = true
				break
			}
		}
		if !tagged {
			continue
		}
		m.probe(ctx, name, rec.Object)
	}
}

// probe performs one bounded health probe and updates health state.
func (m *HealthCheckMonitor) probe(ctx context.Context, name string, obj apis.RoutingObject) {
	pctx, cancel := context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutMillis)*time.Millisecond)
	defer cancel()

	resp, err := obj.Handle(pctx, &apis.Request{Method: "GET", Path: m.cfg.Path})
	healthy := err == nil && resp != nil && resp.Status >= 200 && resp.Status < 400

	m.probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("object", name),
		attribute.Bool("healthy", healthy),
	))

	m.mu.Lock()
	defer m.mu.Unlock()
	if healthy {
		if m.unhealthy[name] {
			m.log.Info("object recovered", "object", name)
		}
		m.failures[name] = 0
		m.unhealthy[name] = false
		return
	}

	m.failures[name]++
	if m.failures[name] >= m.cfg.UnhealthyThreshold && !m.unhealthy[name] {
		m.unhealthy[name] = true
		m.log.Warn("object unhealthy", "object", name, "failures", m.failures[name], "err", err)
	}
}

// Unhealthy reports whether the named object is currently past the
// failure threshold.
func (m *HealthCheckMonitor) Unhealthy(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unhealthy[name]
}
