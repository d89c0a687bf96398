package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/middleware"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// RegisterDashboard registers the overview widgets and the invoice endpoints
// under /v1. All routes require a valid JWT and every response is marked
// no-store. The invoices table is additionally served from the Redis view
// cache, tagged with the invoices view so mutations drop it.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, inv *handler.InvoiceHandler, jwtSecret string, cc config.CacheConfig, views *cache.Views) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.NoStore(),
	)

	// ---- Overview ----
	g.GET("/dashboard/revenue", d.Revenue)
	g.GET("/dashboard/latest-invoices", d.LatestInvoices)
	g.GET("/dashboard/cards", d.Cards)

	// ---- Invoices ----
	g.GET("/invoices", inv.List, middleware.ViewCache(cc, views, service.InvoicesPath))
	g.GET("/invoices/pages", inv.Pages)
	g.GET("/invoices/:id", inv.Get)
	g.POST("/invoices", inv.Create)
	g.PUT("/invoices/:id", inv.Update)
	g.DELETE("/invoices/:id", inv.Delete)
}
