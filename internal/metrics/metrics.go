package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "automator"

// Metrics holds the Prometheus collectors of the automation pipeline.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Actions         *prometheus.CounterVec
	SearchFallbacks prometheus.Counter

	// Browser metrics
	BrowserLaunches prometheus.Counter
	ContextsActive  prometheus.Gauge
}

// New registers every collector on a fresh registry, so several instances can live in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "path"},
		),

		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Automation requests by path and outcome",
			},
			[]string{"path", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Wall-clock duration of automation requests",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"path"},
		),
		Actions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Executed plan actions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		SearchFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_fallbacks_total",
				Help:      "Searches that fell back to the alternate provider",
			},
		),

		BrowserLaunches: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_launches_total",
				Help:      "Browser process launches",
			},
		),
		ContextsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "browser_contexts_active",
				Help:      "Request contexts currently open",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordRequest(path, outcome string, duration time.Duration) {
	m.Requests.WithLabelValues(path, outcome).Inc()
	m.RequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func (m *Metrics) RecordAction(kind, outcome string) {
	m.Actions.WithLabelValues(kind, outcome).Inc()
}
