// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/studyroomhq/study-room-reservation/internal/config"
	"github.com/studyroomhq/study-room-reservation/internal/handler"
	"github.com/studyroomhq/study-room-reservation/internal/middleware"
	"github.com/studyroomhq/study-room-reservation/internal/model"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Rooms        *handler.RoomHandler
	Settings     *handler.SettingsHandler
	Reservations *handler.ReservationHandler
	Checkin      *handler.CheckinHandler
	Admin        *handler.AdminHandler
}

// Register sets up all routes. Public endpoints (health, metrics, room
// catalog, policy view, auth) take no JWT; everything under /v1 requires
// a valid access token, and the /v1/admin group additionally requires
// the ADMIN role. The write endpoints sit behind the Redis token-bucket
// limiter, and cheap read-only listings behind the response cache.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Auth endpoints issue and exchange tokens; no session required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register, limiter)
	auth.POST("/login", h.Auth.Login, limiter)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public read-only views for guests and booking forms.
	e.GET("/v1/rooms", h.Rooms.List, cached)
	e.GET("/v1/settings/public", h.Settings.Public, cached)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	v1.GET("/me", h.Auth.Me)

	v1.POST("/reservations", h.Reservations.Create, limiter)
	v1.GET("/reservations", h.Reservations.ByDate, cached)
	v1.GET("/reservations/mine", h.Reservations.Mine)
	v1.DELETE("/reservations/:id", h.Reservations.Cancel)

	v1.POST("/checkin", h.Checkin.CheckIn, limiter)
	v1.POST("/checkin/manual", h.Checkin.Manual, middleware.RequireRole(model.RoleAdmin))

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/reservations", h.Admin.AllReservations)
	admin.GET("/reservations/current", h.Admin.CurrentReservations)
	admin.DELETE("/reservations/:id", h.Admin.CancelReservation)
	admin.GET("/settings", h.Admin.ListSettings)
	admin.PUT("/settings", h.Admin.UpdateSettings)
	admin.POST("/settings/refresh", h.Admin.RefreshSettings)
}
