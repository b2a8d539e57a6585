package handler

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotai/adotai-backend/internal/utils"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return h
}

func testNow() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func activeProfileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "email", "role", "phone", "city", "bio",
		"avatar_url", "is_active", "created_at", "updated_at",
	}).AddRow(7, 7, "Ana", "ana@example.com", "adopter", "", "Lisbon", "", nil, true, testNow(), testNow())
}

func inactiveProfileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "email", "role", "phone", "city", "bio",
		"avatar_url", "is_active", "created_at", "updated_at",
	}).AddRow(7, 7, "Ana", "ana@example.com", "adopter", "", "Lisbon", "", nil, false, testNow(), testNow())
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	cases := []struct {
		name string
		val  any
		want uint64
		ok   bool
	}{
		{"float64 from json claims", float64(7), 7, true},
		{"uint64", uint64(7), 7, true},
		{"numeric string", "7", 7, true},
		{"garbage string", "abc", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := e.NewContext(nil, nil)
			if tc.val != nil {
				c.Set("user_id", tc.val)
			}
			got, err := getUserID(c)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestSameID(t *testing.T) {
	assert.True(t, sameID(uint64(7), 7))
	assert.True(t, sameID("7", uint64(7)))
	assert.True(t, sameID(" 7 ", 7))
	assert.False(t, sameID(uint64(7), 8))
}
