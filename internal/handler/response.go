package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/apperr"
)

// envelope is the body of every API response.
type envelope struct {
    Success bool   `json:"success"`
    Message string `json:"message"`
    Data    any    `json:"data,omitempty"`
    Meta    *meta  `json:"meta,omitempty"`
}

// meta describes the page of a paginated list.
type meta struct {
    Page  int `json:"page"`
    Limit int `json:"limit"`
    Total int `json:"total"`
}

var kindStatus = map[apperr.Kind]int{
    apperr.KindNotFound:         http.StatusNotFound,
    apperr.KindInvalidState:     http.StatusBadRequest,
    apperr.KindCapacityExceeded: http.StatusBadRequest,
    apperr.KindValidation:       http.StatusBadRequest,
    apperr.KindAlreadyExists:    http.StatusConflict,
    apperr.KindForbidden:        http.StatusForbidden,
    apperr.KindUnauthenticated:  http.StatusUnauthorized,
}

// base carries what every handler needs to answer.
type base struct {
    log *zap.Logger
}

func ok(c echo.Context, status int, msg string, data any) error {
    return c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func paged(c echo.Context, msg string, data any, page, limit, total int) error {
    return c.JSON(http.StatusOK, envelope{Success: true, Message: msg, Data: data,
        Meta: &meta{Page: page, Limit: limit, Total: total}})
}

// fail maps err onto a status.  Errors without a client-facing kind are
// logged and reported as a bare 500.
func (b base) fail(c echo.Context, err error) error {
    var ae *apperr.Error
    if errors.As(err, &ae) {
        if status, known := kindStatus[ae.Kind]; known {
            return c.JSON(status, envelope{Message: ae.Message})
        }
    }
    var he *echo.HTTPError
    if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
        return c.JSON(he.Code, envelope{Message: http.StatusText(he.Code)})
    }
    b.log.Error("request failed",
        zap.String("method", c.Request().Method),
        zap.String("path", c.Path()),
        zap.Error(err))
    return c.JSON(http.StatusInternalServerError, envelope{Message: "internal server error"})
}

// ErrorHandler renders errors that escape handlers and middleware, such as
// unknown routes, in the same envelope.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    b := base{log: log}
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        if rerr := b.fail(c, err); rerr != nil {
            log.Error("write error response", zap.Error(rerr))
        }
    }
}
