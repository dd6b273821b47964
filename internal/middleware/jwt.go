package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the caller identity
// on the context.  Requests without a valid token are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return deny(c, http.StatusUnauthorized, "missing bearer token")
            }
            claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
            if err != nil || claims.Subject == "" {
                return deny(c, http.StatusUnauthorized, "invalid or expired token")
            }
            SetIdentity(c, model.Identity{ID: claims.Subject, Email: claims.Email, Role: model.Role(claims.Role)})
            return next(c)
        }
    }
}

// OptionalJWT attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
                if claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw)); err == nil && claims.Subject != "" {
                    SetIdentity(c, model.Identity{ID: claims.Subject, Email: claims.Email, Role: model.Role(claims.Role)})
                }
            }
            return next(c)
        }
    }
}
