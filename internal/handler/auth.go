package handler

import (
    "net/http"

    validation "github.com/go-ozzo/ozzo-validation/v4"
    "github.com/go-ozzo/ozzo-validation/v4/is"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/service"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
    base
    auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
    return &AuthHandler{base: base{log: log}, auth: auth}
}

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"`
}

func (r registerReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
        validation.Field(&r.Email, validation.Required, is.EmailFormat),
        validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
        validation.Field(&r.Role, validation.In(string(model.RoleUser), string(model.RoleHost))),
    )
}

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

func (r loginReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.Email, validation.Required),
        validation.Field(&r.Password, validation.Required),
    )
}

type refreshReq struct {
    RefreshToken string `json:"refreshToken"`
}

func (r refreshReq) Validate() error {
    return validation.ValidateStruct(&r, validation.Field(&r.RefreshToken, validation.Required))
}

type logoutReq struct {
    RefreshToken string `json:"refreshToken"`
    All          bool   `json:"all"`
}

type passwordReq struct {
    CurrentPassword string `json:"currentPassword"`
    NewPassword     string `json:"newPassword"`
}

func (r passwordReq) Validate() error {
    return validation.ValidateStruct(&r,
        validation.Field(&r.CurrentPassword, validation.Required),
        validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 72)),
    )
}

// Register creates a USER or HOST account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    sess, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
        Name: req.Name, Email: req.Email, Password: req.Password, Role: model.Role(req.Role),
    })
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusCreated, "user registered successfully", sess)
}

func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    sess, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "login successful", sess)
}

// Refresh rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    sess, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "token refreshed", sess)
}

func (h *AuthHandler) Logout(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req logoutReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    if err := h.auth.Logout(c.Request().Context(), id.ID, req.RefreshToken, req.All); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    u, err := h.auth.Me(c.Request().Context(), id.ID)
    if err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "user retrieved", u)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
    id, err := caller(c)
    if err != nil {
        return h.fail(c, err)
    }
    var req passwordReq
    if err := bind(c, &req); err != nil {
        return h.fail(c, err)
    }
    if err := h.auth.ChangePassword(c.Request().Context(), id.ID, req.CurrentPassword, req.NewPassword); err != nil {
        return h.fail(c, err)
    }
    return ok(c, http.StatusOK, "password changed, please sign in again", nil)
}
