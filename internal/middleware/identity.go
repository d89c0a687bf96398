package middleware

// identity.go exposes the authenticated user that JWTAuth stored in the
// Echo context.

import "github.com/labstack/echo/v4"

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
)

// UserID returns the authenticated user's id, or "" outside JWTAuth.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// UserEmail returns the authenticated user's email, or "" outside JWTAuth.
func UserEmail(c echo.Context) string {
	s, _ := c.Get(ctxEmail).(string)
	return s
}
