package gateway

import (
    "context"
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string, ts time.Time) string {
    mac := hmac.New(sha256.New, []byte(secret))
    fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
    return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newTestStripe(t *testing.T, h http.HandlerFunc) *Stripe {
    t.Helper()
    srv := httptest.NewServer(h)
    t.Cleanup(srv.Close)
    backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
        URL:               stripe.String(srv.URL),
        MaxNetworkRetries: stripe.Int64(0),
        LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
    })
    return NewStripe("sk_test_123", testWebhookSecret, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestParseWebhookCheckoutCompleted(t *testing.T) {
    payload := []byte(`{
        "id": "evt_1",
        "object": "event",
        "api_version": "2020-08-27",
        "type": "checkout.session.completed",
        "data": {"object": {
            "id": "cs_test_1",
            "object": "checkout.session",
            "payment_status": "paid",
            "metadata": {"eventId": "e1", "userId": "u1"}
        }}
    }`)
    gw := NewStripe("sk_test_123", testWebhookSecret, nil)

    n, err := gw.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
    require.NoError(t, err)
    assert.True(t, n.Handles())
    assert.Equal(t, EventCheckoutCompleted, n.Type)
    assert.Equal(t, "cs_test_1", n.Session.ID)
    assert.True(t, n.Session.Paid())
    assert.Equal(t, "e1", n.Session.Metadata["eventId"])
    assert.NotEmpty(t, n.Session.Raw)
}

func TestParseWebhookIgnoresOtherEvents(t *testing.T) {
    payload := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
    gw := NewStripe("sk_test_123", testWebhookSecret, nil)

    n, err := gw.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
    require.NoError(t, err)
    assert.False(t, n.Handles())
    assert.Empty(t, n.Session.ID)
}

func TestParseWebhookBadSignature(t *testing.T) {
    payload := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)
    gw := NewStripe("sk_test_123", testWebhookSecret, nil)

    _, err := gw.ParseWebhook(payload, sign(payload, "whsec_other", time.Now()))
    assert.ErrorIs(t, err, ErrInvalidSignature)

    _, err = gw.ParseWebhook(payload, "")
    assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCreateSession(t *testing.T) {
    gw := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, http.MethodPost, r.Method)
        assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
        require.NoError(t, r.ParseForm())
        assert.Equal(t, "payment", r.Form.Get("mode"))
        assert.Equal(t, "2550", r.Form.Get("line_items[0][price_data][unit_amount]"))
        assert.Equal(t, "usd", r.Form.Get("line_items[0][price_data][currency]"))
        assert.Equal(t, "e1", r.Form.Get("metadata[eventId]"))
        w.Header().Set("Content-Type", "application/json")
        _, _ = w.Write([]byte(`{"id":"cs_test_9","object":"checkout.session","url":"https://checkout.example/cs_test_9","payment_status":"unpaid"}`))
    })

    s, err := gw.CreateSession(context.Background(), CheckoutRequest{
        AmountMinor: 2550,
        Currency:    "USD",
        ProductName: "Board games night",
        SuccessURL:  "http://client/events/e1?payment=success",
        CancelURL:   "http://client/events/e1?payment=cancelled",
        Metadata:    map[string]string{"eventId": "e1", "userId": "u1"},
    })
    require.NoError(t, err)
    assert.Equal(t, "cs_test_9", s.ID)
    assert.Equal(t, "https://checkout.example/cs_test_9", s.URL)
    assert.False(t, s.Paid())
}

func TestRetrieveSessionError(t *testing.T) {
    gw := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/v1/checkout/sessions/cs_missing", r.URL.Path)
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusNotFound)
        _, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout.session"}}`))
    })

    _, err := gw.RetrieveSession(context.Background(), "cs_missing")
    assert.Error(t, err)
}
