package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/middleware"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// AuthHandler serves the credentials sign-in and the current session.
type AuthHandler struct {
	Svc *service.Service
}

func NewAuthHandler(svc *service.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Login exchanges email/password for an access token. A refused sign-in
// answers 401 with "Invalid credentials." or "Something went wrong.".
func (h *AuthHandler) Login(c echo.Context) error {
	form, err := formValues(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	sess, msg, err := h.Svc.Authenticate(ctx, form)
	if err != nil {
		slog.Error("sign in failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if sess == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: sess.User.ID, Name: sess.User.Name, Email: sess.User.Email},
		Access: tokenPart{Token: sess.Token.Token, Expires: sess.Token.Exp},
	})
}

// Me returns the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, userPart{ID: middleware.UserID(c), Email: middleware.UserEmail(c)})
}
