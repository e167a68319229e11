// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	JobsTotal          *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	UploadsTotal       *prometheus.CounterVec
	UploadBytes        prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "joyex"
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "total",
				Help:      "Total number of submitted jobs",
			},
			[]string{"mode", "status"}, // status: success, invalid, failed
		),
		GenerationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Image generation duration in seconds",
				Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"mode", "client_mode"},
		),
		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "total",
				Help:      "Total number of upload requests",
			},
			[]string{"status"},
		),
		UploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "bytes_total",
				Help:      "Total bytes received by the upload endpoint",
			},
		),
	}
}

// RecordHTTPRequest counts a finished request. Like every recorder here it
// is a no-op on a nil *Metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordJob(mode, status string) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(mode, status).Inc()
}

func (m *Metrics) RecordGeneration(mode, clientMode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.WithLabelValues(mode, clientMode).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpload(status string, bytes int64) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.UploadBytes.Add(float64(bytes))
	}
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
