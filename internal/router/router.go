package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-archive/internal/config"
	"github.com/iliyamo/invoice-archive/internal/handler"
	"github.com/iliyamo/invoice-archive/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the unauthenticated session endpoints under /api:
// registration, password login and Google login. Each handler issues a
// signed token that the protected invoice routes require.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google-login", a.GoogleLogin)
}

// RegisterInvoices registers every invoice operation behind the JWT gate.
// All of these routes act on per-user resources, so the bearer token is
// required uniformly and handlers verify that the caller owns the invoice
// they touch. Read endpoints additionally sit behind the per-user Redis
// response cache; rdb may be nil, in which case the cache is a pass-through.
func RegisterInvoices(e *echo.Echo, inv *handler.InvoiceHandler, up *handler.UploadHandler, ex *handler.ExtractHandler, cfg config.Config, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/api")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))

	cache := middleware.ResponseCache(cacheCfg, rdb)

	g.POST("/invoices/upload-image", up.UploadImage)
	g.POST("/invoices/extract", ex.Extract)
	g.POST("/invoices", inv.Create)
	g.GET("/invoices", inv.List, cache)
	g.GET("/invoices/:id", inv.Get, cache)
	g.PUT("/invoices/:id", inv.Update)
	g.DELETE("/invoices/:id", inv.Delete)
}
