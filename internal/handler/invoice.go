package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// InvoiceHandler serves the invoices table and the invoice form actions.
type InvoiceHandler struct {
	Svc *service.Service
}

func NewInvoiceHandler(svc *service.Service) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

// List returns one page of the filtered invoices table together with the
// total number of pages for the same query.
//
//	GET /v1/invoices?query=lee&page=2
func (h *InvoiceHandler) List(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	page := pageParam(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	rows, err := h.Svc.FetchFilteredInvoices(ctx, query, page)
	if err != nil {
		return fetchFailed(c, err)
	}
	pages, err := h.Svc.FetchInvoicesPages(ctx, query)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":        rows,
		"page":        page,
		"page_size":   service.ItemsPerPage,
		"total_pages": pages,
	})
}

// Pages returns only the number of pages for ?query=.
func (h *InvoiceHandler) Pages(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	pages, err := h.Svc.FetchInvoicesPages(ctx, strings.TrimSpace(c.QueryParam("query")))
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total_pages": pages})
}

// Get returns the edit-form view of one invoice, 404 when it does not exist.
func (h *InvoiceHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	inv, err := h.Svc.FetchInvoiceByID(ctx, c.Param("id"))
	if err != nil {
		return fetchFailed(c, err)
	}
	if inv == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
	}
	return c.JSON(http.StatusOK, inv)
}

// Create handles the new-invoice form.
func (h *InvoiceHandler) Create(c echo.Context) error {
	form, err := formValues(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return writeAction(c, h.Svc.CreateInvoice(ctx, form))
}

// Update handles the edit-invoice form.
func (h *InvoiceHandler) Update(c echo.Context) error {
	form, err := formValues(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return writeAction(c, h.Svc.UpdateInvoice(ctx, c.Param("id"), form))
}

// Delete removes an invoice.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	return writeAction(c, h.Svc.DeleteInvoice(ctx, c.Param("id")))
}
