// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cferrors "csvflow/cli/internal/errors"
)

// outcomeOK labels a request that completed without error.
const outcomeOK = "ok"

// Metrics holds the web UI's collectors on their own registry, so several
// servers (and tests) never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	downloadTotal   *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec

	mu       sync.Mutex
	sessions []func() int
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		processTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvflow_process_requests_total",
				Help: "Process submits by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		downloadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvflow_download_requests_total",
				Help: "Download requests by outcome",
			},
			[]string{"outcome"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "csvflow_backend_request_duration_seconds",
				Help:    "Latency of calls to the processing service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "csvflow_active_sessions",
			Help: "Browser sessions currently holding controller state",
		},
		m.activeSessions,
	)
	return m
}

// trackSessions adds a session store to the csvflow_active_sessions gauge.
// Servers sharing one Metrics report their combined count.
func (m *Metrics) trackSessions(count func() int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, count)
}

func (m *Metrics) activeSessions() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, count := range m.sessions {
		total += count()
	}
	return float64(total)
}

// ObserveBackend matches backend.WithObserver.
func (m *Metrics) ObserveBackend(endpoint string, elapsed time.Duration, _ error) {
	m.backendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) process(op string, err error) {
	m.processTotal.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) download(err error) {
	m.downloadTotal.WithLabelValues(outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if k := cferrors.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
