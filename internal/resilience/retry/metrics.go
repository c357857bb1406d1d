package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// callsTotal counts retried operations by how they ended: success on the
// first attempt, recovered after a retry, exhausted, permanent or canceled.
var callsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "retry_calls_total",
		Help: "Operations run under a retry policy, by policy and outcome",
	},
	[]string{"policy", "outcome"},
)

func record(policy, outcome string) {
	callsTotal.WithLabelValues(policy, outcome).Inc()
}
