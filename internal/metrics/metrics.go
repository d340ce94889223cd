// Package metrics registers the Prometheus instrumentation for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics holds all Prometheus metrics for the HTTP API.
type APIMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	QuotaRejections *prometheus.CounterVec
	TemplatesTotal  *prometheus.CounterVec
	ExportsTotal    prometheus.Counter
}

// New initializes and registers the Prometheus metrics.
func New() *APIMetrics {
	return &APIMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sendloop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status class.",
		}, []string{"method", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sendloop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		QuotaRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sendloop",
			Subsystem: "billing",
			Name:      "quota_rejections_total",
			Help:      "Create requests rejected by quota gates, by code.",
		}, []string{"code"}), // code: limit_reached, subscription_inactive
		TemplatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sendloop",
			Subsystem: "templates",
			Name:      "submissions_total",
			Help:      "Template submissions to the approval service, by outcome.",
		}, []string{"outcome"}), // outcome: accepted, rejected, invalid
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "sendloop",
			Subsystem: "contacts",
			Name:      "exports_total",
			Help:      "Total number of contact CSV exports served.",
		}),
	}
}
