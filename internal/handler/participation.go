package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/service"
)

// ParticipationHandler serves join, leave and saved events.
type ParticipationHandler struct {
    base
    ledger *service.ParticipationService
}

func NewParticipationHandler(ledger *service.ParticipationService, log *zap.Logger) *ParticipationHandler {
    return &ParticipationHandler{base: base{log: log}, ledger: ledger}
}

func (h *ParticipationHandler) Join(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    p, err := h.ledger.Join(c.Request().Context(), c.Param("id"), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "joined event successfully", p)
}

func (h *ParticipationHandler) Leave(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.ledger.Leave(c.Request().Context(), c.Param("id"), id.ID); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "left event successfully", nil)
}

func (h *ParticipationHandler) Participants(c echo.Context) error {
    list, err := h.ledger.Participants(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "participants retrieved", list)
}

func (h *ParticipationHandler) Save(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    s, err := h.ledger.Save(c.Request().Context(), c.Param("id"), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "event saved", s)
}

func (h *ParticipationHandler) Unsave(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.ledger.Unsave(c.Request().Context(), c.Param("id"), id.ID); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event removed from saved", nil)
}

func (h *ParticipationHandler) Saved(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    list, err := h.ledger.Saved(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "saved events retrieved", list)
}
