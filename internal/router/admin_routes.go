package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventmate-api/internal/middleware"
	"github.com/iliyamo/eventmate-api/internal/model"
)

// registerAdmin registers ADMIN-only endpoints.
func registerAdmin(api *echo.Group, h Handlers, authn echo.MiddlewareFunc) {
	admin := []echo.MiddlewareFunc{authn, middleware.Require(middleware.Roles(model.RoleAdmin))}

	api.GET("/users", h.Users.List, admin...)
	api.PATCH("/users/:id", h.Users.Update, admin...)

	api.POST("/event-types", h.EventTypes.Create, admin...)
	api.PATCH("/event-types/:id", h.EventTypes.Update, admin...)
	api.DELETE("/event-types/:id", h.EventTypes.Delete, admin...)

	api.GET("/host-applications", h.Admin.Applications, admin...)
	api.POST("/host-applications/:id/approve", h.Admin.Approve, admin...)
	api.POST("/host-applications/:id/reject", h.Admin.Reject, admin...)

	g := group(api, "/admin", admin)
	g.GET("/dashboard", h.Admin.Dashboard)
	g.PATCH("/users/:id", h.Admin.ManageUser)
	g.PATCH("/events/:id", h.Admin.ModerateEvent)
}
