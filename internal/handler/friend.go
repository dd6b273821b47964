package handler

import (
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/service"
)

// FriendHandler serves /api/friends.
type FriendHandler struct {
    base
    friends *service.FriendService
}

func NewFriendHandler(friends *service.FriendService, log *zap.Logger) *FriendHandler {
    return &FriendHandler{base: base{log: log}, friends: friends}
}

type friendReq struct {
    FriendID string `json:"friendId"`
}

func (r friendReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.FriendID, validation.Required))
}

// Overview returns friends, received and sent requests.
func (h *FriendHandler) Overview(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    o, err := h.friends.Overview(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "friends retrieved", o)
}

func (h *FriendHandler) Incoming(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    list, err := h.friends.Incoming(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "friend requests retrieved", list)
}

func (h *FriendHandler) Request(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req friendReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    fr, err := h.friends.Request(c.Request().Context(), id.ID, req.FriendID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "friend request sent", fr)
}

// Accept accepts the pending request sent by :id.
func (h *FriendHandler) Accept(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    f, err := h.friends.Accept(c.Request().Context(), id.ID, c.Param("id"))
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "friend request accepted", f)
}

// Remove deletes a friendship or a request in either direction.
func (h *FriendHandler) Remove(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    if err := h.friends.Remove(c.Request().Context(), id.ID, c.Param("id")); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "friend removed", nil)
}
