package router

import (
	"github.com/labstack/echo/v4"
)

// registerPublic registers the browse endpoints that need no token, plus the
// gateway webhook which authenticates by signature instead.
func registerPublic(api *echo.Group, h Handlers, viewer echo.MiddlewareFunc) {
	api.GET("/event-types", h.EventTypes.List)
	api.GET("/event-types/:id", h.EventTypes.Get)

	api.GET("/events", h.Events.List)
	api.GET("/events/:id", h.Events.Get, viewer)
	api.GET("/events/:id/participants", h.Participants.Participants)
	api.GET("/events/:id/reviews", h.Reviews.ForEvent)

	api.GET("/reviews", h.Reviews.List)
	api.GET("/reviews/host/:id", h.Reviews.ForHost)

	api.GET("/users/:id", h.Users.Get)

	api.POST("/payments/webhook", h.Payments.Webhook)
}

func group(api *echo.Group, prefix string, mw []echo.MiddlewareFunc) *echo.Group {
	return api.Group(prefix, mw...)
}
