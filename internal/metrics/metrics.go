// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapabilityInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentkit_capability_invocations_total",
			Help: "Capability invocations by capability name and result kind",
		},
		[]string{"capability", "kind"},
	)

	CapabilityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentkit_capability_failures_total",
			Help: "Capability invocations that returned an error",
		},
		[]string{"capability"},
	)

	CapabilityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentkit_capability_duration_seconds",
			Help:    "Duration of capability invocations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"capability"},
	)

	AgentQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentkit_agent_queries_total",
			Help: "Dispatcher queries by outcome (ok, error)",
		},
		[]string{"outcome"},
	)

	BatchDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentkit_batch_documents_total",
			Help: "Documents processed by the invoice batcher by outcome (answered, error)",
		},
		[]string{"outcome"},
	)
)

// ObserveCapability records one capability invocation. kind is empty when
// the invocation failed with an error.
func ObserveCapability(name, kind string, d time.Duration) {
	CapabilityDuration.WithLabelValues(name).Observe(d.Seconds())
	if kind == "" {
		CapabilityFailures.WithLabelValues(name).Inc()
		return
	}
	CapabilityInvocations.WithLabelValues(name, kind).Inc()
}
