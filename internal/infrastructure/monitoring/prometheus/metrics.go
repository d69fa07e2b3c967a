// Package prometheus wires application metrics into a Prometheus registry
// and exposes the scrape handler.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dealradar"

// Metrics holds every collector the service emits.  A single instance is
// created at startup and shared via constructor injection.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP surface.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Temporal relevance engine.
	DatesResolved        prometheus.Counter
	MalformedDefsSkipped prometheus.Counter

	// Alert rule engine.
	AlertsEvaluated prometheus.Counter
	AlertsMatched   prometheus.Counter
	DismissalsTotal prometheus.Counter

	// Messaging.
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// NewMetrics constructs and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed, by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DatesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_dates_resolved_total",
			Help:      "Key-date definitions successfully resolved to occurrences.",
		}),

		MalformedDefsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_dates_malformed_skipped_total",
			Help:      "Key-date definitions skipped because they carry no usable anchor.",
		}),

		AlertsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_rules_evaluated_total",
			Help:      "Communication rules evaluated against opportunities.",
		}),

		AlertsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_matched_total",
			Help:      "Alerts produced by the rule engine.",
		}),

		DismissalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_dismissals_total",
			Help:      "Newly recorded alert dismissals.",
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events successfully published, by topic.",
		}, []string{"topic"}),

		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_failures_total",
			Help:      "Domain event publish failures, by topic.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DatesResolved,
		m.MalformedDefsSkipped,
		m.AlertsEvaluated,
		m.AlertsMatched,
		m.DismissalsTotal,
		m.EventsPublished,
		m.EventsFailed,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
