// Package metrics exposes Prometheus counters for authentication outcomes
// and an optional dedicated metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the custom zkauth collectors.
type Metrics struct {
	registry *prometheus.Registry

	// AuthRequestsTotal counts API operations by operation and outcome,
	// e.g. operation="verify" outcome="challenge_consumed".
	AuthRequestsTotal *prometheus.CounterVec

	// ChallengesSweptTotal counts challenges removed by the expiry sweep.
	ChallengesSweptTotal prometheus.Counter
}

// New creates a registry with the zkauth collectors plus the standard Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		AuthRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zkauth_auth_requests_total",
				Help: "Total number of authentication API requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ChallengesSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "zkauth_challenges_swept_total",
				Help: "Total number of expired challenges removed by the sweeper",
			},
		),
	}

	reg.MustRegister(
		m.AuthRequestsTotal,
		m.ChallengesSweptTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Record increments the request counter for one operation outcome.
func (m *Metrics) Record(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// Swept adds n to the swept-challenge counter.
func (m *Metrics) Swept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ChallengesSweptTotal.Add(float64(n))
}

// Registry returns the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
