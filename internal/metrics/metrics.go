// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service records to. Construct it once
// with New and pass it to the components that record.
type Metrics struct {
	SlipsAccepted       prometheus.Counter
	SlipsRejected       *prometheus.CounterVec // reason
	ExportFailures      prometheus.Counter
	CacheLookups        *prometheus.CounterVec // resource, result
	UpstreamRequests    *prometheus.CounterVec // resource, outcome
	UpstreamDuration    *prometheus.HistogramVec
	HTTPRequests        *prometheus.CounterVec // route, method, status
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// Tests pass prometheus.NewRegistry() to stay isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SlipsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slips_accepted_total",
			Help: "Total number of haul slips validated and stored",
		}),
		SlipsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slips_rejected_total",
			Help: "Total number of haul slip submissions rejected, by reason",
		}, []string{"reason"}),
		ExportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slip_export_failures_total",
			Help: "Total number of stored slips that could not be appended to the daily CSV",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lookup_cache_requests_total",
			Help: "Total number of lookup cache checks, by resource and hit/miss",
		}, []string{"resource", "result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of calls to the time-tracking service, by resource and outcome",
		}, []string{"resource", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of calls to the time-tracking service",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		m.SlipsAccepted,
		m.SlipsRejected,
		m.ExportFailures,
		m.CacheLookups,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	)
	return m
}

// Discard returns collectors registered with a throwaway registry, for callers
// that do not export metrics.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}
