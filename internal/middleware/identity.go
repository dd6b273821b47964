package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/eventmate-api/internal/model"
)

// Context keys set by JWTAuth.
const (
    identityKey = "identity"
    userIDKey   = "user_id"
    roleKey     = "role"
)

// CurrentIdentity returns the caller established by JWTAuth.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
    id, ok := c.Get(identityKey).(model.Identity)
    return id, ok && id.ID != ""
}

// SetIdentity stores the caller on the context.  Tests use it to bypass
// token parsing.
func SetIdentity(c echo.Context, id model.Identity) {
    c.Set(identityKey, id)
    c.Set(userIDKey, id.ID)
    c.Set(roleKey, string(id.Role))
}

// userID identifies the caller for rate limiting; "anon" without a token.
func userID(c echo.Context) string {
    if id, ok := CurrentIdentity(c); ok {
        return id.ID
    }
    return "anon"
}

func deny(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "message": msg})
}
