// Package queue defines the domain messages exchanged over RabbitMQ together
// with the publisher used by the services and the activity-log consumer.
package queue

// Queue names.  Both are durable and use the default exchange.
const (
    ParticipationQueue = "participation.changed"
    PaymentQueue       = "payment.reconciled"
)

// ParticipationChanged is published after a join or leave commits, and after
// a reconciliation that inserted a participant.
type ParticipationChanged struct {
    EventID    string `json:"event_id"`
    UserID     string `json:"user_id"`
    Action     string `json:"action"` // join, leave or payment
    Status     string `json:"status"`
    Occupancy  int    `json:"occupancy"`
    OccurredAt string `json:"occurred_at"`
}

// PaymentReconciled is published when a reconciliation changed the local
// payment status.
type PaymentReconciled struct {
    PaymentID  string `json:"payment_id"`
    SessionID  string `json:"session_id"`
    EventID    string `json:"event_id"`
    UserID     string `json:"user_id"`
    Status     string `json:"status"`
    Source     string `json:"source"` // webhook or verify
    Amount     string `json:"amount"`
    OccurredAt string `json:"occurred_at"`
}
