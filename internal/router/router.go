package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/armanhn/elearning-marketplace/internal/config"
	"github.com/armanhn/elearning-marketplace/internal/handler"    // import the handlers that implement business logic
	"github.com/armanhn/elearning-marketplace/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/armanhn/elearning-marketplace/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth API under /api. The credential endpoints
// (register, login) are unauthenticated and rate limited; refresh-token and
// logout parse their own bearer, matching how their handlers verify inline;
// the profile endpoints sit behind the JWT gate plus a role allow-list and
// still re-verify inside the handler.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, revoked middleware.RevocationChecker, rdb *redis.Client) {
	api := e.Group("/api")

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	api.POST("/register", a.Register, limiter)
	api.POST("/login", a.Login, limiter)

	api.POST("/refresh-token", a.Refresh)
	api.POST("/logout", a.Logout)

	profile := api.Group("/profile")
	profile.Use(middleware.JWTAuth(a.Cfg.JWTSecret, revoked))
	profile.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMentor, model.RoleLearner))
	profile.GET("", a.Profile)
	profile.PUT("/update", a.UpdateProfile)
}
