// Package metrics exposes host metrics on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hive"

// statusValues maps lifecycle states to the status gauge value
var statusValues = map[string]float64{
	"offline":    0,
	"rebuilding": 1,
	"online":     2,
	"admin":      3,
}

// Metrics holds every collector the host records to. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	GraphRequests   *prometheus.CounterVec
	RestRequests    *prometheus.CounterVec
	RebuildDuration *prometheus.HistogramVec
	ServerStatus    prometheus.Gauge
	WorkerFailures  *prometheus.CounterVec
	AdminClients    prometheus.Gauge
}

// New creates the collectors and registers them with Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		GraphRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "graph",
				Name:      "requests_total",
				Help:      "GraphQL requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),

		RestRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rest",
				Name:      "requests_total",
				Help:      "REST function requests by route and status code",
			},
			[]string{"route", "code"},
		),

		RebuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "rebuild_duration_seconds",
				Help:      "Duration of server rebuilds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		ServerStatus: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "status",
				Help:      "Server status (0=offline, 1=rebuilding, 2=online, 3=admin)",
			},
		),

		WorkerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker",
				Name:      "failures_total",
				Help:      "Database worker failures during rebuild",
			},
			[]string{"worker"},
		),

		AdminClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "admin",
				Name:      "clients",
				Help:      "Connected admin channel clients",
			},
		),
	}

	m.registry.MustRegister(
		m.GraphRequests,
		m.RestRequests,
		m.RebuildDuration,
		m.ServerStatus,
		m.WorkerFailures,
		m.AdminClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordGraphRequest counts one GraphQL request
func (m *Metrics) RecordGraphRequest(endpoint string, failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.GraphRequests.WithLabelValues(endpoint, outcome).Inc()
}

// RecordRestRequest counts one REST function call
func (m *Metrics) RecordRestRequest(route string, code int) {
	if m == nil {
		return
	}
	m.RestRequests.WithLabelValues(route, http.StatusText(code)).Inc()
}

// RecordRebuild observes a finished rebuild
func (m *Metrics) RecordRebuild(d time.Duration, ok bool) {
	if m == nil {
		return
	}
	result := "online"
	if !ok {
		result = "admin"
	}
	m.RebuildDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordStatus sets the status gauge
func (m *Metrics) RecordStatus(status string) {
	if m == nil {
		return
	}
	m.ServerStatus.Set(statusValues[status])
}

// RecordWorkerFailure counts a database worker that failed to build
func (m *Metrics) RecordWorkerFailure(worker string) {
	if m == nil {
		return
	}
	m.WorkerFailures.WithLabelValues(worker).Inc()
}

// AdminClientConnected adjusts the admin client gauge by delta
func (m *Metrics) AdminClientConnected(delta int) {
	if m == nil {
		return
	}
	m.AdminClients.Add(float64(delta))
}
