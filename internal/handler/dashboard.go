package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// DashboardHandler serves the overview page widgets.
type DashboardHandler struct {
	Svc *service.Service
}

func NewDashboardHandler(svc *service.Service) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

// Revenue returns the monthly revenue chart data.
func (h *DashboardHandler) Revenue(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rows, err := h.Svc.FetchRevenue(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// LatestInvoices returns the five newest invoices.
func (h *DashboardHandler) LatestInvoices(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	rows, err := h.Svc.FetchLatestInvoices(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Cards returns the summary counters and totals.
func (h *DashboardHandler) Cards(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	cards, err := h.Svc.FetchCardData(ctx)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}
