// Package metrics exposes the engine's Prometheus counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OpportunitiesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "exchange_opportunities_created_total", Help: "Total opportunities created"},
	)
	ResponsesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "exchange_responses_created_total", Help: "Total responses created"},
	)
	StatusTransitions = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "exchange_status_transitions_total", Help: "Total response status transitions applied"},
	)
	ForbiddenOperations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "exchange_forbidden_total", Help: "Total operations denied by an access predicate"},
	)
	ValidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "exchange_validation_failures_total", Help: "Total drafts rejected by validation"},
	)
)

// Register adds all engine counters to the default registry.
func Register() {
	prometheus.MustRegister(
		OpportunitiesCreated,
		ResponsesCreated,
		StatusTransitions,
		ForbiddenOperations,
		ValidationFailures,
	)
}
