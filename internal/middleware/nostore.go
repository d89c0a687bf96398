package middleware

import "github.com/labstack/echo/v4"

// NoStore marks every response as uncacheable by clients and proxies. Read
// endpoints always reflect the current state of the datastore.
func NoStore() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
			return next(c)
		}
	}
}
