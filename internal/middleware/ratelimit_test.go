package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotai/adotai-backend/internal/config"
)

func TestTokenBucketExhaustion(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "adotai:rl",
	}

	e := echo.New()
	mw := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/animals", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/animals")
		require.NoError(t, mw(c))
		return rec
	}

	// Two tokens in the bucket: two requests pass, the third blocks.
	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	third := do()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Equal(t, "0", third.Header().Get("X-RateLimit-Remaining"))
}

func TestTokenBucketDisabledIsNoop(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/animals", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, mw(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestTokenBucketKeysSeparateClients(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "adotai:rl",
	}

	e := echo.New()
	mw := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/animals", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/animals")
		require.NoError(t, mw(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.9:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.9:1234"))
	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, do("198.51.100.7:4321"))
}
