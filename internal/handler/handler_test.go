package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/handler"
	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/router"
	"github.com/iliyamo/invoice-dashboard/internal/service"
	"github.com/iliyamo/invoice-dashboard/internal/service/servicetest"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

const secret = "handler-test-secret"

type testServer struct {
	e     *echo.Echo
	store *servicetest.Store
	rec   *servicetest.Recorder
	token string
}

func newTestServer(c *qt.C) *testServer {
	store := servicetest.NewStore()
	rec := &servicetest.Recorder{}
	deps := store.Deps()
	deps.Invalidator = rec
	deps.JWTSecret = secret
	svc := service.New(deps)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), secret, config.RateLimitConfig{}, nil)
	router.RegisterDashboard(e, handler.NewDashboardHandler(svc), handler.NewInvoiceHandler(svc), secret, config.CacheConfig{}, nil)
	router.RegisterCustomer(e, handler.NewCustomerHandler(svc), secret)

	tok, err := utils.NewAccessToken(secret, store.Users[0].ID, store.Users[0].Email, 5)
	c.Assert(err, qt.IsNil)
	return &testServer{e: e, store: store, rec: rec, token: tok.Token}
}

func (s *testServer) do(method, target string, form url.Values, auth bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if auth {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(c *qt.C, rec *httptest.ResponseRecorder, v any) {
	c.Assert(json.Unmarshal(rec.Body.Bytes(), v), qt.IsNil, qt.Commentf("body: %s", rec.Body.String()))
}

func TestHealth(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	rec := s.do(http.MethodGet, "/healthz", nil, false)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Equals, "ok")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	for _, target := range []string{"/v1/me", "/v1/invoices", "/v1/dashboard/cards", "/v1/customers"} {
		rec := s.do(http.MethodGet, target, nil, false)
		c.Assert(rec.Code, qt.Equals, http.StatusUnauthorized, qt.Commentf("target %s", target))
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantError  string
	}{
		{"valid", url.Values{"email": {servicetest.UserEmail}, "password": {servicetest.UserPassword}}, http.StatusOK, ""},
		{"wrong password", url.Values{"email": {servicetest.UserEmail}, "password": {"nope-nope"}}, http.StatusUnauthorized, "Invalid credentials."},
		{"unknown email", url.Values{"email": {"ghost@nextmail.com"}, "password": {servicetest.UserPassword}}, http.StatusUnauthorized, "Invalid credentials."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			s := newTestServer(c)
			rec := s.do(http.MethodPost, "/v1/auth/login", tt.form, false)
			c.Assert(rec.Code, qt.Equals, tt.wantStatus)

			var body map[string]any
			decode(c, rec, &body)
			if tt.wantError != "" {
				c.Assert(body["error"], qt.Equals, tt.wantError)
				return
			}
			access := body["access"].(map[string]any)
			claims, err := utils.ParseAccessToken(secret, access["token"].(string))
			c.Assert(err, qt.IsNil)
			c.Assert(claims.Email, qt.Equals, servicetest.UserEmail)
		})
	}
}

func TestLoginDatastoreFailure(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	s.store.Err = errors.New("db down")
	rec := s.do(http.MethodPost, "/v1/auth/login", url.Values{"email": {servicetest.UserEmail}, "password": {servicetest.UserPassword}}, false)
	c.Assert(rec.Code, qt.Equals, http.StatusUnauthorized)
	var body map[string]string
	decode(c, rec, &body)
	c.Assert(body["error"], qt.Equals, "Something went wrong.")
}

func TestMe(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	rec := s.do(http.MethodGet, "/v1/me", nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var body map[string]string
	decode(c, rec, &body)
	c.Assert(body["email"], qt.Equals, servicetest.UserEmail)
	c.Assert(body["id"], qt.Equals, s.store.Users[0].ID)
}

func TestReadsAreNoStore(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	for _, target := range []string{
		"/v1/dashboard/revenue", "/v1/dashboard/latest-invoices", "/v1/dashboard/cards",
		"/v1/invoices", "/v1/invoices/pages", "/v1/customers", "/v1/customers/table",
	} {
		rec := s.do(http.MethodGet, target, nil, true)
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("target %s", target))
		c.Assert(rec.Header().Get("Cache-Control"), qt.Equals, "no-store", qt.Commentf("target %s", target))
	}
}

func TestCardsOnEmptyStore(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	rec := s.do(http.MethodGet, "/v1/dashboard/cards", nil, true)
	var cards model.CardData
	decode(c, rec, &cards)
	c.Assert(cards.TotalPaidInvoices, qt.Equals, "$0.00")
	c.Assert(cards.TotalPendingInvoices, qt.Equals, "$0.00")
	c.Assert(cards.NumberOfInvoices, qt.Equals, int64(0))
}

func TestFetchFailureIsGeneric(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	s.store.Err = errors.New("pq: password authentication failed for user admin")
	rec := s.do(http.MethodGet, "/v1/invoices?query=x&page=1", nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusInternalServerError)
	c.Assert(rec.Body.String(), qt.Not(qt.Contains), "password")
	var body map[string]string
	decode(c, rec, &body)
	c.Assert(body["error"], qt.Equals, "Failed to fetch invoices.")
}

func TestCreateInvoiceValidationFailure(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	rec := s.do(http.MethodPost, "/v1/invoices", url.Values{"customerId": {servicetest.CustomerLee}, "amount": {"0"}, "status": {"paid"}}, true)
	c.Assert(rec.Code, qt.Equals, http.StatusUnprocessableEntity)

	var state service.ActionState
	decode(c, rec, &state)
	c.Assert(state.Message, qt.Equals, "Missing Fields. Failed to Create Invoice.")
	c.Assert(state.Errors, qt.DeepEquals, map[string][]string{"amount": {"Please enter an amount greater than $0."}})
	c.Assert(s.store.Invoices, qt.HasLen, 0)
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)

	rec := s.do(http.MethodPost, "/v1/invoices", url.Values{"customerId": {servicetest.CustomerLee}, "amount": {"250.30"}, "status": {"pending"}}, true)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(rec.Header().Get("Location"), qt.Equals, service.InvoicesPath)
	c.Assert(s.store.Invoices, qt.HasLen, 1)
	id := s.store.Invoices[0].ID

	rec = s.do(http.MethodGet, "/v1/invoices/"+id, nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var form model.InvoiceForm
	decode(c, rec, &form)
	c.Assert(form.Amount, qt.Equals, 250.3)

	rec = s.do(http.MethodGet, "/v1/invoices?query=lee", nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var list struct {
		Data       []model.InvoicesTable `json:"data"`
		Page       int                   `json:"page"`
		TotalPages int64                 `json:"total_pages"`
	}
	decode(c, rec, &list)
	c.Assert(list.Data, qt.HasLen, 1)
	c.Assert(list.Data[0].Amount, qt.Equals, int64(25030))
	c.Assert(list.Page, qt.Equals, 1)
	c.Assert(list.TotalPages, qt.Equals, int64(1))

	rec = s.do(http.MethodPut, "/v1/invoices/"+id, url.Values{"customerId": {servicetest.CustomerLee}, "amount": {"300"}, "status": {"paid"}}, true)
	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	inv, _ := s.store.Invoice(id)
	c.Assert(inv.AmountCents, qt.Equals, int64(30000))
	c.Assert(inv.Status, qt.Equals, model.StatusPaid)

	rec = s.do(http.MethodDelete, "/v1/invoices/"+id, nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var state service.ActionState
	decode(c, rec, &state)
	c.Assert(state.Message, qt.Equals, "Deleted Successfully.")

	rec = s.do(http.MethodGet, "/v1/invoices/"+id, nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)

	c.Assert(s.rec.Events(), qt.HasLen, 3)
}

func TestPageBelowOneIsClamped(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	s.store.AddInvoice("00000000-0000-0000-0000-000000000001", servicetest.CustomerDelba, 100, model.StatusPaid, "2023-01-01")
	rec := s.do(http.MethodGet, "/v1/invoices?page=-4", nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var list struct {
		Data []model.InvoicesTable `json:"data"`
		Page int                   `json:"page"`
	}
	decode(c, rec, &list)
	c.Assert(list.Page, qt.Equals, 1)
	c.Assert(list.Data, qt.HasLen, 1)
}

func TestJSONFormBody(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices",
		strings.NewReader(`{"customerId":"`+servicetest.CustomerSteph+`","amount":12.5,"status":"paid"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	c.Assert(rec.Code, qt.Equals, http.StatusSeeOther)
	c.Assert(s.store.Invoices, qt.HasLen, 1)
	c.Assert(s.store.Invoices[0].AmountCents, qt.Equals, int64(1250))
}

func TestCustomersTable(t *testing.T) {
	c := qt.New(t)
	s := newTestServer(c)
	s.store.AddInvoice("00000000-0000-0000-0000-000000000001", servicetest.CustomerSteph, 1250, model.StatusPending, "2023-01-01")
	rec := s.do(http.MethodGet, "/v1/customers/table?query=steph", nil, true)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var body struct {
		Data []model.FormattedCustomersTable `json:"data"`
	}
	decode(c, rec, &body)
	c.Assert(body.Data, qt.HasLen, 1)
	c.Assert(body.Data[0].TotalPending, qt.Equals, "$12.50")
	c.Assert(body.Data[0].TotalPaid, qt.Equals, "$0.00")
}
