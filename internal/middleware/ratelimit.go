package middleware

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/config"
)

// RateKeyFunc names the bucket a request draws from.
type RateKeyFunc func(c echo.Context) string

// bucketScript takes one token from the bucket in KEYS[1] after adding
// refill_tokens for every whole interval elapsed since the last refill.
// It returns {allowed, remaining, wait_ms}.
//
//	ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_ms
var bucketScript = redis.NewScript(`
	local now, cap = tonumber(ARGV[1]), tonumber(ARGV[2])
	local per, every, ttl = tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

	local b = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
	local tokens = tonumber(b[1]) or cap
	local ts = tonumber(b[2]) or now

	local steps = math.floor(math.max(0, now - ts) / every)
	if steps > 0 then
		tokens = math.min(cap, tokens + steps * per)
		ts = ts + steps * every
	end

	local wait = 0
	if tokens >= 1 then
		tokens = tokens - 1
	else
		wait = every - (now - ts)
	end

	redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
	redis.call('PEXPIRE', KEYS[1], ttl)
	if wait > 0 then
		return {0, tokens, wait}
	end
	return {1, tokens, 0}
`)

// NewTokenBucket limits requests with a token bucket per key kept in Redis.
// Redis failures let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb redis.Scripter, key RateKeyFunc) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			k := key(c)
			res, err := bucketScript.Run(c.Request().Context(), rdb, []string{k},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				cfg.TTL.Milliseconds(),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				slog.Warn("rate limiter unavailable", "key", k, "err", err, "result", fmt.Sprint(res))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}
			secs := waitSeconds(res[2])
			h.Set(echo.HeaderRetryAfter, strconv.FormatInt(secs, 10))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "Too many sign-in attempts. Try again later.",
				"retry_after": secs,
			})
		}
	}
}

// waitSeconds rounds a wait in milliseconds up to whole seconds.
func waitSeconds(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}

// maxPeekBytes bounds how much of a JSON sign-in body is read for the email.
const maxPeekBytes = 4 << 10

// LoginRateKey buckets sign-in attempts by client IP and the submitted
// email, so one address guessing many accounts and many addresses guessing
// one account are both throttled per pair. The email is hashed and folded
// to lower case.
func LoginRateKey(prefix string) RateKeyFunc {
	return func(c echo.Context) string {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		email := strings.ToLower(strings.TrimSpace(submittedEmail(c)))
		sum := sha1.Sum([]byte(email))
		return fmt.Sprintf("%s:login:%s:%x", prefix, ip, sum[:8])
	}
}

// submittedEmail reads the email field without consuming the body the
// handler binds afterwards.
func submittedEmail(c echo.Context) string {
	req := c.Request()
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return c.FormValue("email")
	}
	if req.Body == nil {
		return ""
	}
	head, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBytes))
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), req.Body), req.Body}
	if err != nil {
		return ""
	}
	var v struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(head, &v) != nil {
		return ""
	}
	return v.Email
}
