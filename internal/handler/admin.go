package handler

import (
    "context"
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/service"
)

// AdminHandler serves /api/admin and the host application workflow.
type AdminHandler struct {
    base
    admin *service.AdminService
    apps  *service.HostApplicationService
}

func NewAdminHandler(admin *service.AdminService, apps *service.HostApplicationService, log *zap.Logger) *AdminHandler {
    return &AdminHandler{base: base{log: log}, admin: admin, apps: apps}
}

type actionReq struct {
    Action string `json:"action"`
}

func (r actionReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.Action, validation.Required))
}

type applicationReq struct {
    Message string `json:"message"`
}

func (r applicationReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.Message, validation.Required, validation.Length(1, 2000)))
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
    stats, err := h.admin.Dashboard(c.Request().Context())
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "dashboard retrieved", stats)
}

// ManageUser promotes or demotes a user one step.
func (h *AdminHandler) ManageUser(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req actionReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    u, err := h.admin.ManageUser(c.Request().Context(), c.Param("id"), req.Action, id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "user "+req.Action+"d successfully", u)
}

// ModerateEvent approves or cancels an event.
func (h *AdminHandler) ModerateEvent(c echo.Context) error {
    var req actionReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    ev, err := h.admin.ModerateEvent(c.Request().Context(), c.Param("id"), req.Action)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event moderated", ev)
}

// Apply files a host application for the caller.
func (h *AdminHandler) Apply(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req applicationReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    app, err := h.apps.Apply(c.Request().Context(), id, req.Message)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "application submitted", app)
}

func (h *AdminHandler) MyApplications(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    list, err := h.apps.Mine(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "applications retrieved", list)
}

func (h *AdminHandler) Applications(c echo.Context) error {
    list, err := h.apps.List(c.Request().Context(), model.ApplicationStatus(c.QueryParam("status")))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "applications retrieved", list)
}

func (h *AdminHandler) Approve(c echo.Context) error {
    return h.decide(c, h.apps.Approve, "application approved")
}

func (h *AdminHandler) Reject(c echo.Context) error {
    return h.decide(c, h.apps.Reject, "application rejected")
}

func (h *AdminHandler) decide(c echo.Context, fn func(ctx context.Context, id string, admin model.Identity) (model.HostApplication, error), msg string) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    app, err := fn(c.Request().Context(), c.Param("id"), id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, msg, app)
}
