package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/eventmate-api/internal/model"
)

// Policy decides which authenticated callers may pass.  The zero value
// admits nobody; use AnyAuthenticated or Roles.
type Policy struct {
    anyRole bool
    roles   map[model.Role]bool
}

// AnyAuthenticated admits every caller holding a valid token.
func AnyAuthenticated() Policy { return Policy{anyRole: true} }

// Roles admits callers whose role is listed.  An empty list is a
// programming error.
func Roles(roles ...model.Role) Policy {
    if len(roles) == 0 {
        panic("middleware: Roles requires at least one role; use AnyAuthenticated")
    }
    p := Policy{roles: make(map[model.Role]bool, len(roles))}
    for _, r := range roles {
        p.roles[r] = true
    }
    return p
}

// Allows reports whether the role passes the policy.
func (p Policy) Allows(role model.Role) bool {
    return p.anyRole || p.roles[role]
}

// Require enforces p.  It must run after JWTAuth: a missing identity is 401,
// a disallowed role is 403.
func Require(p Policy) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CurrentIdentity(c)
            if !ok {
                return deny(c, http.StatusUnauthorized, "authentication required")
            }
            if !p.Allows(id.Role) {
                return deny(c, http.StatusForbidden, "you do not have permission to perform this action")
            }
            return next(c)
        }
    }
}
