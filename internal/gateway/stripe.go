package gateway

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"
    "time"

    "github.com/stripe/stripe-go/v76"
    "github.com/stripe/stripe-go/v76/client"
    "github.com/stripe/stripe-go/v76/webhook"

    "github.com/iliyamo/eventmate-api/internal/metrics"
)

// Stripe implements checkout through Stripe Checkout Sessions.
type Stripe struct {
    sc            *client.API
    webhookSecret string
}

// NewStripe returns a Stripe adapter.  backends may be nil to use the
// default API endpoints.
func NewStripe(secretKey, webhookSecret string, backends *stripe.Backends) *Stripe {
    return &Stripe{sc: client.New(secretKey, backends), webhookSecret: webhookSecret}
}

// CreateSession opens a hosted checkout session in payment mode.
func (s *Stripe) CreateSession(ctx context.Context, req CheckoutRequest) (Session, error) {
    defer metrics.ObserveGateway("create_session", time.Now())

    params := &stripe.CheckoutSessionParams{
        Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
        SuccessURL: stripe.String(req.SuccessURL),
        CancelURL:  stripe.String(req.CancelURL),
        LineItems: []*stripe.CheckoutSessionLineItemParams{{
            PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
                Currency: stripe.String(strings.ToLower(req.Currency)),
                ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
                    Name: stripe.String(req.ProductName),
                },
                UnitAmount: stripe.Int64(req.AmountMinor),
            },
            Quantity: stripe.Int64(1),
        }},
    }
    params.Context = ctx
    for k, v := range req.Metadata {
        params.AddMetadata(k, v)
    }

    cs, err := s.sc.CheckoutSessions.New(params)
    if err != nil {
        return Session{}, fmt.Errorf("stripe create session: %w", err)
    }
    return toSession(cs), nil
}

// RetrieveSession fetches the current state of a session.
func (s *Stripe) RetrieveSession(ctx context.Context, id string) (Session, error) {
    defer metrics.ObserveGateway("retrieve_session", time.Now())

    params := &stripe.CheckoutSessionParams{}
    params.Context = ctx
    cs, err := s.sc.CheckoutSessions.Get(id, params)
    if err != nil {
        return Session{}, fmt.Errorf("stripe retrieve session: %w", err)
    }
    return toSession(cs), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the
// embedded checkout session.  Events of other object types come back with
// an empty Session and Handles() == false.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (Notification, error) {
    ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
        webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
    if err != nil {
        return Notification{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
    }
    n := Notification{ID: ev.ID, Type: string(ev.Type)}
    if !n.Handles() {
        return n, nil
    }
    var cs stripe.CheckoutSession
    if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
        return Notification{}, fmt.Errorf("stripe webhook: decode session: %w", err)
    }
    n.Session = toSession(&cs)
    return n, nil
}

func toSession(cs *stripe.CheckoutSession) Session {
    raw, _ := json.Marshal(cs)
    return Session{
        ID:            cs.ID,
        URL:           cs.URL,
        PaymentStatus: string(cs.PaymentStatus),
        Metadata:      cs.Metadata,
        Raw:           raw,
    }
}
