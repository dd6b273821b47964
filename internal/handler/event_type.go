package handler

import (
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/service"
)

// EventTypeHandler serves /api/event-types.
type EventTypeHandler struct {
    base
    types *service.EventTypeService
}

func NewEventTypeHandler(types *service.EventTypeService, log *zap.Logger) *EventTypeHandler {
    return &EventTypeHandler{base: base{log: log}, types: types}
}

type eventTypeReq struct {
    Name string `json:"name"`
}

func (r eventTypeReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.Name, validation.Required, validation.Length(1, 120)))
}

func (h *EventTypeHandler) List(c echo.Context) error {
    list, err := h.types.List(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event types retrieved", list)
}

func (h *EventTypeHandler) Get(c echo.Context) error {
    t, err := h.types.Get(c.Request().Context(), c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event type retrieved", t)
}

func (h *EventTypeHandler) Create(c echo.Context) error {
    var req eventTypeReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    t, err := h.types.Create(c.Request().Context(), req.Name)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "event type created successfully", t)
}

func (h *EventTypeHandler) Update(c echo.Context) error {
    var req eventTypeReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    t, err := h.types.Rename(c.Request().Context(), c.Param("id"), req.Name)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event type updated successfully", t)
}

func (h *EventTypeHandler) Delete(c echo.Context) error {
    if err := h.types.Delete(c.Request().Context(), c.Param("id")); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event type deleted successfully", nil)
}
