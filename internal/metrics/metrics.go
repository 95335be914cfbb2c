// Package metrics provides the Prometheus metrics exported by deskmatter.
//
// All metrics use the deskmatter_ prefix and are registered on a private
// registry so tests can create as many instances as they need. Every
// recording method is safe to call on a nil *Metrics, which is what callers
// get when metrics are disabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks HTTP, lifecycle, tray and scheduler metrics.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by route, method and status code
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks HTTP latency distribution per route
	RequestDuration *prometheus.HistogramVec

	// ServerRunning is 1 while the listener is bound
	ServerRunning prometheus.Gauge

	// LifecycleOps counts start/stop calls by result
	LifecycleOps *prometheus.CounterVec

	// TrayFlashing is 1 while the tray icon flashes
	TrayFlashing prometheus.Gauge

	// RepeatMatters counts matters materialized from repeat tasks
	RepeatMatters prometheus.Counter
}

// New creates a registry with Go runtime collectors and registers all
// deskmatter metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskmatter_http_requests_total",
				Help: "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskmatter_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),
		ServerRunning: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskmatter_server_running",
				Help: "Whether the HTTP listener is bound (1) or not (0)",
			},
		),
		LifecycleOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskmatter_lifecycle_operations_total",
				Help: "Server start/stop calls by operation and result",
			},
			[]string{"op", "result"}, // result: "ok", "noop", "error"
		),
		TrayFlashing: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskmatter_tray_flashing",
				Help: "Whether the tray icon is flashing (1) or not (0)",
			},
		),
		RepeatMatters: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "deskmatter_repeat_matters_created_total",
				Help: "Matters created from active repeat tasks",
			},
		),
	}
}

// Handler returns the /metrics HTTP handler. A nil receiver serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(route, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordLifecycle records a start or stop call.
func (m *Metrics) RecordLifecycle(op, result string) {
	if m == nil {
		return
	}
	m.LifecycleOps.WithLabelValues(op, result).Inc()
}

// SetServerRunning updates the listener gauge.
func (m *Metrics) SetServerRunning(running bool) {
	if m == nil {
		return
	}
	m.ServerRunning.Set(boolToFloat(running))
}

// SetTrayFlashing updates the tray gauge.
func (m *Metrics) SetTrayFlashing(flashing bool) {
	if m == nil {
		return
	}
	m.TrayFlashing.Set(boolToFloat(flashing))
}

// RecordRepeatMatter counts one materialized repeat matter.
func (m *Metrics) RecordRepeatMatter() {
	if m == nil {
		return
	}
	m.RepeatMatters.Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
