package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	run := func(role any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := RequireRole("advertiser", "admin")(ok)
		require.NoError(t, h(c))
		return rec
	}

	t.Run("allowed role passes", func(t *testing.T) {
		rec := run("advertiser")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin passes too", func(t *testing.T) {
		rec := run("admin")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		rec := run("adopter")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		rec := run(nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-string role is forbidden", func(t *testing.T) {
		rec := run(42)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
