package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingOutcomes counts terminal booking outcomes per flow (combined, decoupled)
	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookings",
			Name:      "outcomes_total",
			Help:      "The total number of booking attempts by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	// ChargeOutcomes counts gateway charge results
	ChargeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "charges_total",
			Help:      "The total number of gateway charges by outcome",
		},
		[]string{"outcome"},
	)

	// ChargeDuration time spent waiting on the gateway (summary with quantiles 0.5, 0.9, and 0.99)
	ChargeDuration = promauto.NewSummary(
		prometheus.SummaryOpts{
			Namespace:  "payments",
			Name:       "charge_duration_seconds",
			Help:       "The time spent waiting for gateway charges",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
	)

	Refunds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payments",
			Name:      "refunds_total",
			Help:      "The total number of refunds by outcome",
		},
		[]string{"outcome"},
	)

	BroadcastDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "broadcast",
			Name:      "delivered_total",
			Help:      "The total number of seat events delivered to live connections",
		},
	)

	BroadcastEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "broadcast",
			Name:      "evicted_total",
			Help:      "The total number of live connections dropped after a failed send",
		},
	)

	BroadcastSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "broadcast",
			Name:      "subscribers",
			Help:      "The number of currently subscribed live connections",
		},
	)
)
