package handler

import (
    "net/http"
    "time"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/go-ozzo/ozzo-validation/v4/is"
    "github.com/labstack/echo/v4"
    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/middleware"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/service"
    "github.com/iliyamo/eventmate-api/internal/store"
)

var eventSorts = []string{"createdAt", "dateTime", "name", "joiningFee"}

// EventHandler serves /api/events.
type EventHandler struct {
    base
    events *service.EventService
}

func NewEventHandler(events *service.EventService, log *zap.Logger) *EventHandler {
    return &EventHandler{base: base{log: log}, events: events}
}

type createEventReq struct {
    Name            string           `json:"name"`
    TypeID          string           `json:"typeId"`
    Description     string           `json:"description"`
    DateTime        *time.Time       `json:"dateTime"`
    Location        string           `json:"location"`
    Image           *string          `json:"image"`
    MinParticipants *int             `json:"minParticipants"`
    MaxParticipants *int             `json:"maxParticipants"`
    JoiningFee      *decimal.Decimal `json:"joiningFee"`
}

func (r createEventReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
        validation.Field(&r.TypeID, validation.Required, is.UUID),
        validation.Field(&r.Description, validation.Length(0, 5000)),
        validation.Field(&r.DateTime, validation.Required),
        validation.Field(&r.Location, validation.Required, validation.Length(1, 255)),
        validation.Field(&r.Image, is.URL),
        validation.Field(&r.MinParticipants, validation.Min(1)),
        validation.Field(&r.MaxParticipants, validation.Min(0)),
    )
}

// updateEventReq is the allow-list of editable event fields.
type updateEventReq struct {
    Name            *string          `json:"name"`
    TypeID          *string          `json:"typeId"`
    Description     *string          `json:"description"`
    DateTime        *time.Time       `json:"dateTime"`
    Location        *string          `json:"location"`
    Image           *string          `json:"image"`
    MinParticipants *int             `json:"minParticipants"`
    MaxParticipants *int             `json:"maxParticipants"`
    JoiningFee      *decimal.Decimal `json:"joiningFee"`
}

func (r updateEventReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
        validation.Field(&r.TypeID, validation.NilOrNotEmpty, is.UUID),
        validation.Field(&r.Description, validation.Length(0, 5000)),
        validation.Field(&r.Location, validation.NilOrNotEmpty, validation.Length(1, 255)),
        validation.Field(&r.Image, is.URL),
        validation.Field(&r.MinParticipants, validation.Min(1)),
        validation.Field(&r.MaxParticipants, validation.Min(0)),
    )
}

func (h *EventHandler) Create(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req createEventReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    in := service.EventInput{
        Name:            req.Name,
        TypeID:          req.TypeID,
        Description:     req.Description,
        DateTime:        *req.DateTime,
        Location:        req.Location,
        Image:           req.Image,
        MinParticipants: req.MinParticipants,
        MaxParticipants: req.MaxParticipants,
    }
    if req.JoiningFee != nil {
        in.JoiningFee = *req.JoiningFee
    }
    ev, err := h.events.Create(c.Request().Context(), id.ID, in)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "event created successfully", ev)
}

// List is the public catalogue.
func (h *EventHandler) List(c echo.Context) error {
    p, err := pageFrom(c, eventSorts...)
    if err != nil {
        return h.fail(c, err)
    }
    f := store.EventFilter{
        Search:   c.QueryParam("search"),
        TypeID:   c.QueryParam("typeId"),
        Location: c.QueryParam("location"),
        Status:   model.EventStatus(c.QueryParam("status")),
    }
    if f.Status != "" && !f.Status.Valid() {
        return h.fail(c, errInvalidQuery("status"))
    }
    list, total, err := h.events.List(c.Request().Context(), f, p)
    if err != nil {
        return h.fail(c, err)
    }
    return paged(c, "events retrieved", list, p.Page, p.Limit, total)
}

// listFor runs one of the caller-scoped listings.
func (h *EventHandler) listFor(c echo.Context, fn func(id model.Identity, p store.Page) ([]model.Event, int, error)) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    p, err := pageFrom(c, eventSorts...)
    if err != nil {
        return h.fail(c, err)
    }
    list, total, err := fn(id, p)
    if err != nil {
        return h.fail(c, err)
    }
    return paged(c, "events retrieved", list, p.Page, p.Limit, total)
}

func (h *EventHandler) Hosted(c echo.Context) error {
    return h.listFor(c, func(id model.Identity, p store.Page) ([]model.Event, int, error) {
        return h.events.Hosted(c.Request().Context(), id.ID, p)
    })
}

func (h *EventHandler) Joined(c echo.Context) error {
    return h.listFor(c, func(id model.Identity, p store.Page) ([]model.Event, int, error) {
        return h.events.Joined(c.Request().Context(), id.ID, p)
    })
}

// FriendsEvents lists events hosted or joined by the caller's friends.
func (h *EventHandler) FriendsEvents(c echo.Context) error {
    return h.listFor(c, func(id model.Identity, p store.Page) ([]model.Event, int, error) {
        return h.events.FriendsEvents(c.Request().Context(), id.ID, p)
    })
}

// FriendJoined lists the events one friend participates in.
func (h *EventHandler) FriendJoined(c echo.Context) error {
    return h.listFor(c, func(id model.Identity, p store.Page) ([]model.Event, int, error) {
        return h.events.FriendJoined(c.Request().Context(), id.ID, c.Param("id"), p)
    })
}

func (h *EventHandler) Get(c echo.Context) error {
    var viewer string
    if id, ok := middleware.CurrentIdentity(c); ok {
        viewer = id.ID
    }
    d, err := h.events.Detail(c.Request().Context(), c.Param("id"), viewer)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event retrieved", d)
}

func (h *EventHandler) Update(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req updateEventReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    ev, err := h.events.Update(c.Request().Context(), c.Param("id"), id, service.EventPatch{
        Name:            req.Name,
        TypeID:          req.TypeID,
        Description:     req.Description,
        DateTime:        req.DateTime,
        Location:        req.Location,
        Image:           req.Image,
        MinParticipants: req.MinParticipants,
        MaxParticipants: req.MaxParticipants,
        JoiningFee:      req.JoiningFee,
    })
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event updated successfully", ev)
}

func (h *EventHandler) Delete(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.events.Delete(c.Request().Context(), c.Param("id"), id); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event deleted successfully", nil)
}

func (h *EventHandler) Cancel(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    ev, err := h.events.Cancel(c.Request().Context(), c.Param("id"), id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event cancelled", ev)
}

func (h *EventHandler) Complete(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    ev, err := h.events.Complete(c.Request().Context(), c.Param("id"), id)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "event completed", ev)
}
