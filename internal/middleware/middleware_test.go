package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/cache"
	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/service"
	"github.com/iliyamo/invoice-dashboard/internal/utils"
)

func newTestRedis(c *qt.C) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(c)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestPayloadRoundTrip(t *testing.T) {
	c := qt.New(t)
	hdr := http.Header{"Content-Type": {"application/json"}, "Cache-Control": {"no-store"}}
	body := []byte(`{"invoices":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	c.Assert(err, qt.IsNil)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	c.Assert(ok, qt.IsTrue)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(gotHdr, qt.DeepEquals, hdr)
	c.Assert(string(gotBody), qt.Equals, string(body))
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	c := qt.New(t)
	for _, bs := range [][]byte{nil, []byte("short"), {0, 0, 0, 200, 0, 0, 1, 0, '{'}} {
		_, _, _, ok := decodePayload(bs)
		c.Assert(ok, qt.IsFalse)
	}
}

func TestViewKey(t *testing.T) {
	c := qt.New(t)
	a := viewKey("view", "/v1/invoices", "query=lee&page=1")
	b := viewKey("view", "/v1/invoices", "query=lee&page=2")
	c.Assert(a, qt.Not(qt.Equals), b)
	c.Assert(a, qt.Equals, viewKey("view", "/v1/invoices", "query=lee&page=1"))
	c.Assert(a[:5], qt.Equals, "view:")
}

func TestCaptureWriterLimit(t *testing.T) {
	c := qt.New(t)
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	c.Assert(cw.truncated(), qt.IsFalse)
	_, _ = cw.Write([]byte("def"))
	c.Assert(cw.truncated(), qt.IsTrue)
	c.Assert(cw.buf.String(), qt.Equals, "abcd")
	c.Assert(rec.Body.String(), qt.Equals, "abcdef")
}

func TestViewCacheDisabledPassesThrough(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	calls := 0
	h := ViewCache(config.CacheConfig{Enabled: true}, cache.NewViews(nil, "view", 0), "/dashboard/invoices")(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/invoices", nil), rec)
		c.Assert(h(ctx), qt.IsNil)
		c.Assert(rec.Header().Get("X-Cache"), qt.Equals, "")
	}
	c.Assert(calls, qt.Equals, 2)
}

func TestNoStore(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	err := NoStore()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(rec.Header().Get("Cache-Control"), qt.Equals, "no-store")
}

func TestJWTAuth(t *testing.T) {
	const secret = "s3cret"
	tok, err := utils.NewAccessToken(secret, "410544b2-4001-4271-9855-fec4b6a6442a", "user@nextmail.com", 5)
	qt.Assert(t, err, qt.IsNil)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + tok.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)

			var gotID, gotEmail string
			err := JWTAuth(secret)(func(c echo.Context) error {
				gotID, gotEmail = UserID(c), UserEmail(c)
				return c.NoContent(http.StatusOK)
			})(ctx)
			c.Assert(err, qt.IsNil)
			c.Assert(rec.Code, qt.Equals, tt.wantStatus)
			if tt.wantStatus == http.StatusOK {
				c.Assert(gotID, qt.Equals, "410544b2-4001-4271-9855-fec4b6a6442a")
				c.Assert(gotEmail, qt.Equals, "user@nextmail.com")
			}
		})
	}
}

func TestTokenBucketDisabled(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil), rec)
	err := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, LoginRateKey("rl"))(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(rec.Code, qt.Equals, http.StatusNoContent)
}

func TestViewCacheHitMissAndInvalidate(t *testing.T) {
	c := qt.New(t)
	rdb, _ := newTestRedis(c)
	views := cache.NewViews(rdb, "view", time.Minute)

	e := echo.New()
	calls := 0
	e.GET("/v1/invoices", func(c echo.Context) error {
		calls++
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, ViewCache(config.CacheConfig{Enabled: true}, views, service.InvoicesPath))

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	first := get("/v1/invoices?query=lee")
	c.Assert(first.Code, qt.Equals, http.StatusOK)
	c.Assert(first.Header().Get("X-Cache"), qt.Equals, "MISS")

	second := get("/v1/invoices?query=lee")
	c.Assert(second.Header().Get("X-Cache"), qt.Equals, "HIT")
	c.Assert(second.Header().Get("Cache-Control"), qt.Equals, "no-store")
	c.Assert(second.Body.String(), qt.Equals, first.Body.String())

	other := get("/v1/invoices?query=lee&page=2")
	c.Assert(other.Header().Get("X-Cache"), qt.Equals, "MISS")
	c.Assert(calls, qt.Equals, 2)

	err := views.Invalidate(context.Background(), service.ViewEvent{Path: service.InvoicesPath, Action: "updated"})
	c.Assert(err, qt.IsNil)

	c.Assert(get("/v1/invoices?query=lee").Header().Get("X-Cache"), qt.Equals, "MISS")
	c.Assert(get("/v1/invoices?query=lee&page=2").Header().Get("X-Cache"), qt.Equals, "MISS")
	c.Assert(calls, qt.Equals, 4)
}

func TestViewCacheSkipsStoreWhenDroppedMidRender(t *testing.T) {
	c := qt.New(t)
	rdb, _ := newTestRedis(c)
	views := cache.NewViews(rdb, "view", time.Minute)

	e := echo.New()
	calls := 0
	e.GET("/v1/invoices", func(c echo.Context) error {
		calls++
		if calls == 1 {
			// A mutation commits and invalidates while this page renders.
			if err := views.Invalidate(c.Request().Context(), service.ViewEvent{Path: service.InvoicesPath}); err != nil {
				return err
			}
		}
		return c.String(http.StatusOK, "page")
	}, ViewCache(config.CacheConfig{Enabled: true}, views, service.InvoicesPath))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/invoices", nil))
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		c.Assert(rec.Header().Get("X-Cache"), qt.Equals, "MISS")
	}
	c.Assert(calls, qt.Equals, 2)
}

func TestViewCacheDoesNotStoreErrors(t *testing.T) {
	c := qt.New(t)
	rdb, _ := newTestRedis(c)
	views := cache.NewViews(rdb, "view", time.Minute)

	e := echo.New()
	calls := 0
	e.GET("/v1/invoices", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database Error: Failed to fetch invoices."})
	}, ViewCache(config.CacheConfig{Enabled: true}, views, service.InvoicesPath))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/invoices", nil))
		c.Assert(rec.Header().Get("X-Cache"), qt.Equals, "MISS")
	}
	c.Assert(calls, qt.Equals, 2)
}

func TestWaitSeconds(t *testing.T) {
	c := qt.New(t)
	c.Assert(waitSeconds(0), qt.Equals, int64(0))
	c.Assert(waitSeconds(-10), qt.Equals, int64(0))
	c.Assert(waitSeconds(1), qt.Equals, int64(1))
	c.Assert(waitSeconds(1000), qt.Equals, int64(1))
	c.Assert(waitSeconds(5999), qt.Equals, int64(6))
}

func TestLoginRateKey(t *testing.T) {
	c := qt.New(t)
	e := echo.New()
	key := LoginRateKey("rl")

	formReq := func(email string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(url.Values{"email": {email}}.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.RemoteAddr = "10.1.2.3:5555"
		return e.NewContext(req, httptest.NewRecorder())
	}

	a := key(formReq("user@nextmail.com"))
	c.Assert(strings.HasPrefix(a, "rl:login:10.1.2.3:"), qt.IsTrue, qt.Commentf("key %s", a))
	c.Assert(key(formReq(" USER@nextmail.com ")), qt.Equals, a)
	c.Assert(key(formReq("other@nextmail.com")), qt.Not(qt.Equals), a)

	// JSON bodies give the same key and stay readable for the handler.
	body := `{"email":"user@nextmail.com","password":"123456"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "10.1.2.3:5555"
	ctx := e.NewContext(req, httptest.NewRecorder())
	c.Assert(key(ctx), qt.Equals, a)
	rest, err := io.ReadAll(ctx.Request().Body)
	c.Assert(err, qt.IsNil)
	c.Assert(string(rest), qt.Equals, body)
}

func TestTokenBucketThrottlesPerEmail(t *testing.T) {
	c := qt.New(t)
	rdb, _ := newTestRedis(c)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}

	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, NewTokenBucket(cfg, rdb, LoginRateKey(cfg.Prefix)))

	login := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(url.Values{"email": {email}, "password": {"x"}}.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	c.Assert(login("user@nextmail.com").Code, qt.Equals, http.StatusNoContent)
	second := login("user@nextmail.com")
	c.Assert(second.Code, qt.Equals, http.StatusNoContent)
	c.Assert(second.Header().Get("X-RateLimit-Remaining"), qt.Equals, "0")

	third := login("user@nextmail.com")
	c.Assert(third.Code, qt.Equals, http.StatusTooManyRequests)
	retry := third.Header().Get(echo.HeaderRetryAfter)
	c.Assert(retry == "60" || retry == "59", qt.IsTrue, qt.Commentf("Retry-After %s", retry))

	c.Assert(login("other@nextmail.com").Code, qt.Equals, http.StatusNoContent)
}

func TestTokenBucketRedisDownLetsThrough(t *testing.T) {
	c := qt.New(t)
	rdb, mr := newTestRedis(c)
	mr.SetError("LOADING server is loading")

	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}, rdb, LoginRateKey("rl")))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
		c.Assert(rec.Code, qt.Equals, http.StatusNoContent)
	}
}
