// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    participation = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "eventmate_participation_total",
            Help: "Join and leave attempts by outcome",
        },
        []string{"op", "result"},
    )

    reconciliations = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "eventmate_payment_reconciliations_total",
            Help: "Payment reconciliations by trigger and outcome",
        },
        []string{"source", "outcome"},
    )

    reviewsCreated = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "eventmate_reviews_created_total",
            Help: "Reviews created",
        },
    )

    gatewayLatency = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "eventmate_gateway_request_seconds",
            Help:    "Latency of payment gateway calls",
            Buckets: prometheus.DefBuckets,
        },
        []string{"op"},
    )
)

// Participation counts a join or leave.  result is "ok" or an error kind.
func Participation(op, result string) {
    participation.WithLabelValues(op, result).Inc()
}

// Reconciliation counts a reconcile run.  source is "webhook" or "verify".
func Reconciliation(source, outcome string) {
    reconciliations.WithLabelValues(source, outcome).Inc()
}

// ReviewCreated counts a successfully created review.
func ReviewCreated() {
    reviewsCreated.Inc()
}

// ObserveGateway records the duration of a gateway call started at start.
func ObserveGateway(op string, start time.Time) {
    gatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
