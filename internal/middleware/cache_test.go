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

func cacheTestSetup(t *testing.T) (*redis.Client, config.CacheConfig) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         30 * time.Second,
		KeyStrategy: "route_query",
		Prefix:      "adotai:cache",
	}
	return rdb, cfg
}

func TestRedisCacheMissThenHit(t *testing.T) {
	rdb, cfg := cacheTestSetup(t)
	e := echo.New()

	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"animals": []string{"Rex"}})
	}
	mw := NewRedisCache(cfg, rdb)(handler)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/animals?species=dog", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/animals")
		require.NoError(t, mw(c))
		return rec
	}

	first := do()
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	second := do()
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls, "handler must not run on a hit")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, http.StatusOK, second.Code)
}

func TestRedisCacheSkipsOtherMethods(t *testing.T) {
	rdb, cfg := cacheTestSetup(t)
	e := echo.New()

	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusCreated)
	}
	mw := NewRedisCache(cfg, rdb)(handler)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/animals", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/v1/animals")
		require.NoError(t, mw(c))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestRedisCacheDisabledIsNoop(t *testing.T) {
	rdb, cfg := cacheTestSetup(t)
	cfg.Enabled = false
	e := echo.New()

	calls := 0
	mw := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/animals", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, mw(c))
	}
	assert.Equal(t, 2, calls)
}
