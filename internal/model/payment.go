package model

import (
    "encoding/json"
    "time"

    "github.com/shopspring/decimal"
)

// PaymentStatus is the local state of a gateway checkout.
type PaymentStatus string

const (
    PaymentPending PaymentStatus = "PENDING"
    PaymentPaid    PaymentStatus = "PAID"
    PaymentFailed  PaymentStatus = "FAILED"
)

// Payment records one checkout session for a paid event (`payments`).
//
// Fields:
//  ID          – UUID primary key.
//  Amount      – charged amount in major currency units.
//  EventID     – event being paid for.
//  UserID      – paying user.
//  SessionID   – unique gateway checkout session id.
//  Status      – PENDING, PAID or FAILED.
//  GatewayData – last raw gateway snapshot (nullable JSON).
type Payment struct {
    ID          string          `json:"id"`
    Amount      decimal.Decimal `json:"amount"`
    EventID     string          `json:"eventId"`
    UserID      string          `json:"userId"`
    SessionID   string          `json:"sessionId"`
    Status      PaymentStatus   `json:"status"`
    GatewayData json.RawMessage `json:"-"`
    CreatedAt   time.Time       `json:"createdAt"`
    UpdatedAt   time.Time       `json:"updatedAt"`
}

// PaymentDetail is a payment joined with its event projection.
type PaymentDetail struct {
    Payment
    Event EventSummary `json:"event"`
}
