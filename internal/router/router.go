// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/handler"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// Deps carries everything the routes need.  Redis may be nil, in which case
// caching is off and rate limiting runs in process.
type Deps struct {
	Booking   handler.Booking
	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the browse endpoints.  Search and seat map
// responses are cached briefly in Redis.
func RegisterPublic(e *echo.Echo, d Deps) {
	h := handler.NewTrainHandler(d.Booking)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)

	g := e.Group("/v1")
	g.GET("/stations", h.Stations, cache)
	g.GET("/trains/search", h.Search, cache)
	g.GET("/trains/seats", h.Seats, cache)
}

// RegisterReservations registers the booking endpoints.  Both customers and
// admins may book for themselves.
func RegisterReservations(e *echo.Echo, d Deps) {
	h := handler.NewReservationHandler(d.Booking)
	g := e.Group(
		"/v1/reservations",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.POST("", h.Reserve)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/commit", h.Commit)
	g.POST("/:id/cancel", h.Cancel)
	g.DELETE("/:id", h.Cancel)
	g.GET("/:id/ticket.png", h.Ticket)
}

// RegisterAdmin registers operator endpoints guarded by the ADMIN role.
func RegisterAdmin(e *echo.Echo, d Deps) {
	h := handler.NewAdminHandler(d.Booking)
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/reservations/:id/reject", h.Reject)
}

// New builds the echo instance with global middleware and every route.
func New(d Deps, log *zap.SugaredLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))

	RegisterRoutes(e)
	RegisterPublic(e, d)
	RegisterReservations(e, d)
	RegisterAdmin(e, d)
	return e
}
