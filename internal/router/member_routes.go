package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventmate-api/internal/middleware"
	"github.com/iliyamo/eventmate-api/internal/model"
)

// registerMember registers endpoints for any signed-in user.  Ownership of
// events and reviews is checked by the services.
func registerMember(api *echo.Group, h Handlers, member []echo.MiddlewareFunc) {
	hostOnly := middleware.Require(middleware.Roles(model.RoleHost, model.RoleAdmin))

	ev := group(api, "/events", member)
	ev.GET("/hosted", h.Events.Hosted, hostOnly)
	ev.GET("/joined", h.Events.Joined)
	ev.GET("/friends", h.Events.FriendsEvents)
	ev.GET("/saved", h.Participants.Saved)
	ev.POST("", h.Events.Create, hostOnly)
	ev.PATCH("/:id", h.Events.Update)
	ev.DELETE("/:id", h.Events.Delete)
	ev.POST("/:id/cancel", h.Events.Cancel)
	ev.POST("/:id/complete", h.Events.Complete)
	ev.POST("/:id/join", h.Participants.Join)
	ev.DELETE("/:id/join", h.Participants.Leave)
	ev.POST("/:id/save", h.Participants.Save)
	ev.DELETE("/:id/save", h.Participants.Unsave)

	users := group(api, "/users", member)
	users.PATCH("/me", h.Users.UpdateMe)

	rv := group(api, "/reviews", member)
	rv.POST("", h.Reviews.Create)
	rv.PATCH("/:id", h.Reviews.Update)
	rv.DELETE("/:id", h.Reviews.Delete)

	pay := group(api, "/payments", member)
	pay.POST("/checkout", h.Payments.Checkout)
	pay.GET("/verify", h.Payments.Verify)
	pay.GET("/mine", h.Payments.Mine)

	fr := group(api, "/friends", member)
	fr.GET("", h.Friends.Overview)
	fr.GET("/requests", h.Friends.Incoming)
	fr.POST("/requests", h.Friends.Request)
	fr.POST("/requests/:id/accept", h.Friends.Accept)
	fr.DELETE("/:id", h.Friends.Remove)
	fr.GET("/:id/events", h.Events.FriendJoined)

	apps := group(api, "/host-applications", member)
	apps.POST("", h.Admin.Apply)
	apps.GET("/mine", h.Admin.MyApplications)
}

