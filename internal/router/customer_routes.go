package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/middleware"
)

// RegisterCustomer registers the customer endpoints under /v1. Both routes
// require a valid JWT: the picker list used by the invoice form and the
// searchable customers table.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.NoStore(),
	)
	g.GET("/customers", h.List)
	g.GET("/customers/table", h.Table)
}
