// Package metrics exposes Prometheus collectors for the storefront client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the client-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	endpointAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ivita",
			Subsystem: "api",
			Name:      "endpoint_attempts_total",
			Help:      "Candidate endpoint attempts per logical query.",
		},
		[]string{"query", "outcome"},
	)

	endpointExhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ivita",
			Subsystem: "api",
			Name:      "endpoint_exhausted_total",
			Help:      "Logical queries for which every candidate endpoint failed.",
		},
		[]string{"query"},
	)

	cartMirrorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ivita",
			Subsystem: "cart",
			Name:      "mirror_failures_total",
			Help:      "Best-effort remote cart mirror calls that failed.",
		},
	)

	searches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ivita",
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Search queries dispatched after debouncing.",
		},
	)
)

func init() {
	Registry.MustRegister(endpointAttempts, endpointExhausted, cartMirrorFailures, searches)
}

// RecordEndpointAttempt counts one candidate attempt for a logical query.
func RecordEndpointAttempt(query string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "success"
	}
	endpointAttempts.WithLabelValues(query, outcome).Inc()
}

// RecordEndpointExhausted counts a logical query whose candidates all failed.
func RecordEndpointExhausted(query string) {
	endpointExhausted.WithLabelValues(query).Inc()
}

// RecordMirrorFailure counts a failed best-effort cart mirror call.
func RecordMirrorFailure() {
	cartMirrorFailures.Inc()
}

// RecordSearch counts a dispatched search query.
func RecordSearch() {
	searches.Inc()
}
