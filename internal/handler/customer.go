package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// CustomerHandler serves the customer picker and the customers table.
type CustomerHandler struct {
	Svc *service.Service
}

func NewCustomerHandler(svc *service.Service) *CustomerHandler {
	return &CustomerHandler{Svc: svc}
}

func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rows, err := h.Svc.FetchCustomers(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Table returns customers matching ?query= with their invoice totals.
func (h *CustomerHandler) Table(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rows, err := h.Svc.FetchFilteredCustomers(ctx, strings.TrimSpace(c.QueryParam("query")))
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
