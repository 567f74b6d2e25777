// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Diyor-ux/star/internal/config"
	"github.com/Diyor-ux/star/internal/handler"
	"github.com/Diyor-ux/star/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	JWTSecret string
	Redis     *redis.Client

	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Categories   *handler.CategoryHandler
	Customers    *handler.CustomerHandler
	Reservations *handler.ReservationHandler
	APIKeys      *handler.APIKeyHandler
	Health       echo.HandlerFunc

	Employees middleware.EmployeeSource
	CustSrc   middleware.CustomerSource
	Keys      middleware.KeySource
}

// Register mounts the full API under /api. Public catalog reads sit behind
// the Redis response cache; the whole group is rate limited. Write access
// splits by population: employees manage the catalog and reservations,
// customers self-serve registration, login and their own reservations.
func Register(e *echo.Echo, d Deps) {
	api := e.Group("/api")
	api.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	api.GET("/health", d.Health)

	empAuth := middleware.EmployeeAuth(d.JWTSecret, d.Employees)
	cusAuth := middleware.CustomerAuth(d.JWTSecret, d.CustSrc)
	optAuth := middleware.OptionalAuth(d.JWTSecret, d.Employees, d.CustSrc)
	admin := middleware.RequireAdmin()
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	// Sessions.
	api.POST("/auth/employee/login", d.Auth.EmployeeLogin)
	api.GET("/auth/employee/me", d.Auth.EmployeeMe, empAuth)
	api.POST("/auth/customer/register", d.Auth.CustomerRegister)
	api.POST("/auth/customer/login", d.Auth.CustomerLogin)
	api.GET("/auth/customer/me", d.Auth.CustomerMe, cusAuth)

	// Catalog: public reads (cached), employee writes.
	api.GET("/products", d.Products.List, cache)
	api.GET("/products/alerts/low-stock", d.Products.LowStock, empAuth)
	api.GET("/products/:id", d.Products.Get, cache)
	api.POST("/products", d.Products.Create, empAuth)
	api.PUT("/products/:id", d.Products.Update, empAuth)
	api.DELETE("/products/:id", d.Products.Delete, empAuth)

	api.GET("/categories", d.Categories.List, cache)
	api.POST("/categories", d.Categories.Create, empAuth)
	api.PUT("/categories/:id", d.Categories.Update, empAuth)

	// Customer directory for store staff.
	api.GET("/customers", d.Customers.List, empAuth)

	// Reservations. Creation and reads resolve whichever principal the
	// token carries; status changes are staff-only.
	api.POST("/reservations", d.Reservations.Create, optAuth)
	api.GET("/reservations", d.Reservations.List, optAuth)
	api.GET("/reservations/:id", d.Reservations.Get, optAuth)
	api.PUT("/reservations/:id/status", d.Reservations.UpdateStatus, empAuth)
	api.PUT("/reservations/:id/cancel", d.Reservations.Cancel, optAuth)

	// Admin-only key provisioning.
	api.POST("/api-keys", d.APIKeys.Create, empAuth, admin)
	api.GET("/api-keys", d.APIKeys.List, empAuth, admin)

	// Service-to-service surface: external systems read the catalog with a
	// static key instead of a session token.
	keyAuth := middleware.APIKeyAuth(d.Keys)
	api.GET("/integration/products", d.Products.List, keyAuth)
	api.GET("/integration/products/alerts/low-stock", d.Products.LowStock, keyAuth)
}
