// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/eventmate-api/internal/config"
	"github.com/iliyamo/eventmate-api/internal/handler"
	"github.com/iliyamo/eventmate-api/internal/middleware"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	EventTypes   *handler.EventTypeHandler
	Events       *handler.EventHandler
	Participants *handler.ParticipationHandler
	Payments     *handler.PaymentHandler
	Reviews      *handler.ReviewHandler
	Friends      *handler.FriendHandler
	Admin        *handler.AdminHandler
}

// Options carries the infrastructure the router needs besides handlers.
// Redis may be nil, in which case rate limiting and caching are skipped.
type Options struct {
	JWTSecret string
	DB        handler.Pinger
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *zap.Logger
}

// RegisterRoutes installs the global middleware, the health and metrics
// endpoints and every /api group.
func RegisterRoutes(e *echo.Echo, h Handlers, o Options) {
	e.HTTPErrorHandler = handler.ErrorHandler(o.Log)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(o.Log))

	e.GET("/healthz", handler.Health(o.DB))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if o.Redis != nil {
		api.Use(middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Log))
		api.Use(middleware.NewRedisCache(o.Cache, o.Redis, o.Log))
	}

	authn := middleware.JWTAuth(o.JWTSecret)
	member := []echo.MiddlewareFunc{authn, middleware.Require(middleware.AnyAuthenticated())}

	registerAuth(api, h.Auth, member)
	registerPublic(api, h, middleware.OptionalJWT(o.JWTSecret))
	registerMember(api, h, member)
	registerAdmin(api, h, authn)
}

func registerAuth(api *echo.Group, a *handler.AuthHandler, member []echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, member...)
	g.GET("/me", a.Me, member...)
	g.PATCH("/password", a.ChangePassword, member...)
}
