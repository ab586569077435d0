package metrics

import "github.com/prometheus/client_golang/prometheus"

// Domain counters for the inventory/billing engine. Registered on the default
// registry, exposed on the same listener as the HTTP metrics.
var (
	OrdersCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "bakehouse",
			Name:      "orders_committed_total",
			Help:      "Orders created by the commit transaction, partitioned by origin.",
		},
		[]string{"origin"}, // checkout | subscription
	)

	OversellRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "bakehouse",
			Name:      "oversell_rejected_total",
			Help:      "Commit attempts aborted because a batch had insufficient availability.",
		},
	)

	DuplicateEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: "bakehouse",
			Name:      "duplicate_payment_events_total",
			Help:      "Payment confirmation events acknowledged as idempotent replays.",
		},
	)

	SweepOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: "bakehouse",
			Name:      "billing_sweep_outcomes_total",
			Help:      "Per-subscription outcomes of billing sweeps.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(OrdersCommitted, OversellRejected, DuplicateEvents, SweepOutcomes)
}
