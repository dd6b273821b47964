package handler

import (
    "errors"
    "io"
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/gateway"
    "github.com/iliyamo/eventmate-api/internal/service"
)

// maxWebhookBytes bounds the signed payload read from the gateway.
const maxWebhookBytes = 64 << 10

// WebhookParser verifies and decodes gateway webhook deliveries.
type WebhookParser interface {
    ParseWebhook(payload []byte, signature string) (gateway.Notification, error)
}

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
    base
    payments *service.PaymentService
    webhooks WebhookParser
}

func NewPaymentHandler(payments *service.PaymentService, webhooks WebhookParser, log *zap.Logger) *PaymentHandler {
    return &PaymentHandler{base: base{log: log}, payments: payments, webhooks: webhooks}
}

type checkoutReq struct {
    EventID string `json:"eventId"`
}

func (r checkoutReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.EventID, validation.Required))
}

// Checkout opens a gateway checkout session for a paid event.
func (h *PaymentHandler) Checkout(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req checkoutReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    res, err := h.payments.CreateSession(c.Request().Context(), req.EventID, id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "checkout session created", res)
}

// Verify is called by the client after returning from checkout.
func (h *PaymentHandler) Verify(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    res, err := h.payments.Verify(c.Request().Context(), c.QueryParam("session_id"), id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "payment status "+string(res.Status), res)
}

func (h *PaymentHandler) Mine(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    list, err := h.payments.MyPayments(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "payments retrieved", list)
}

// Webhook receives gateway notifications.  The raw body is needed for the
// signature check.  Deliveries for unknown sessions are acknowledged so the
// gateway stops retrying; store failures answer 500 so it retries.
func (h *PaymentHandler) Webhook(c echo.Context) error {
    payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
    if err != nil {
        return h.fail(c, apperr.Validation("could not read webhook body"))
    }
    n, err := h.webhooks.ParseWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
    if err != nil {
        h.log.Warn("webhook rejected", zap.Error(err))
        if errors.Is(err, gateway.ErrInvalidSignature) {
            return c.JSON(http.StatusBadRequest, envelope{Message: "invalid webhook signature"})
        }
        return c.JSON(http.StatusBadRequest, envelope{Message: "invalid webhook payload"})
    }
    res, err := h.payments.HandleNotification(c.Request().Context(), n)
    switch apperr.KindOf(err) {
    case "":
        if err != nil {
            return h.fail(c, err)
        }
    case apperr.KindUpstream:
        return h.fail(c, err)
    default:
        h.log.Warn("webhook not applied",
            zap.String("event", n.ID), zap.String("type", n.Type),
            zap.String("session", n.Session.ID), zap.Error(err))
    }
    return c.JSON(http.StatusOK, envelope{Success: true, Message: "received", Data: echo.Map{"received": true, "status": res.Status}})
}
