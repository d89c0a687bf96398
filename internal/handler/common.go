package handler // handler defines http handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

// requestTimeout bounds every datastore round trip made by a handler.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// formValues flattens the submitted form into key -> value. URL-encoded and
// multipart bodies keep the last value of a repeated key; JSON bodies must
// be a single object whose scalar values are stringified.
func formValues(c echo.Context) (map[string]string, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		return jsonValues(c)
	}
	params, err := c.FormParams()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(params))
	for k, vals := range params {
		if len(vals) > 0 {
			out[k] = vals[len(vals)-1]
		}
	}
	return out, nil
}

func jsonValues(c echo.Context) (map[string]string, error) {
	var raw map[string]any
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("field %q is not a scalar", k)
		}
	}
	return out, nil
}

// pageParam reads ?page=, clamped to at least 1.
func pageParam(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// fetchFailed writes the generic message of a read failure.
func fetchFailed(c echo.Context, err error) error {
	var fe *service.FetchError
	if errors.As(err, &fe) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fe.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// writeAction turns a mutation result into a response: 422 for form errors,
// 500 for datastore errors, 303 for a redirect and 200 otherwise.
func writeAction(c echo.Context, res service.ActionResult) error {
	switch {
	case res.Invalid():
		return c.JSON(http.StatusUnprocessableEntity, res.State)
	case !res.OK:
		return c.JSON(http.StatusInternalServerError, res.State)
	case res.Redirect != "":
		return c.Redirect(http.StatusSeeOther, res.Redirect)
	default:
		return c.JSON(http.StatusOK, res.State)
	}
}
