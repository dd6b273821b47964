// Package gateway talks to the hosted checkout provider.  The service layer
// depends on the Session / CheckoutRequest shapes defined here; Stripe is the
// only adapter.
package gateway

import (
    "encoding/json"
    "errors"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("gateway: invalid webhook signature")

// Webhook event types the reconciler acts on.
const (
    EventCheckoutCompleted     = "checkout.session.completed"
    EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
    EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"
    EventCheckoutExpired       = "checkout.session.expired"

    PaymentStatusPaid = "paid"
)

// CheckoutRequest describes a single-item hosted checkout.
type CheckoutRequest struct {
    AmountMinor int64
    Currency    string
    ProductName string
    SuccessURL  string
    CancelURL   string
    Metadata    map[string]string
}

// Session is the provider-neutral view of a checkout session.
type Session struct {
    ID            string
    URL           string
    PaymentStatus string
    Metadata      map[string]string
    Raw           json.RawMessage
}

// Paid reports whether the provider considers the session paid.
func (s Session) Paid() bool { return s.PaymentStatus == PaymentStatusPaid }

// Notification is a verified webhook delivery carrying a checkout session.
type Notification struct {
    ID      string
    Type    string
    Session Session
}

// Handles reports whether the reconciler acts on this notification type.
func (n Notification) Handles() bool {
    switch n.Type {
    case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed, EventCheckoutExpired:
        return true
    }
    return false
}
