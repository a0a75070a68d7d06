package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		requestsSubmittedTotal,
		requestsResolvedTotal,
	)
}

var (
	requestsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_requests_submitted_total",
			Help: "Submission calls by outcome.",
		},
		[]string{"outcome"}, // 'created', 'blocked', 'needs_confirmation'
	)

	requestsResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_requests_resolved_total",
			Help: "Admin decisions on pending requests.",
		},
		[]string{"decision"}, // 'approved', 'rejected'
	)
)

func IncRequestSubmitted(outcome string) {
	requestsSubmittedTotal.WithLabelValues(outcome).Inc()
}

func IncRequestResolved(decision string) {
	requestsResolvedTotal.WithLabelValues(decision).Inc()
}
