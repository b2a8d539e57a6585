package handler // handler defines http handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// getUserID extracts the auth identity id from echo.Context and
// converts it to uint64. JWT numeric claims arrive as float64 after
// JSON decoding, so several representations are tolerated.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getEmail extracts the email claim, if present.
func getEmail(c echo.Context) string {
	if s, ok := c.Get("email").(string); ok {
		return s
	}
	return ""
}

// resolveCaller resolves the authenticated caller to their profile
// through the repository's fallback chain. Every protected handler
// that needs the profile id goes through here.
func resolveCaller(ctx context.Context, c echo.Context, profiles *repository.ProfileRepo) (model.Profile, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.Profile{}, err
	}
	return profiles.Resolve(ctx, uid, getEmail(c))
}

// sameID compares two ids after string normalization. Ownership
// checks use it so a backend that hands back a padded or stringly
// typed id still matches.
func sameID(a, b any) bool {
	norm := func(v any) string {
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		case uint64:
			return strconv.FormatUint(t, 10)
		case int:
			return strconv.Itoa(t)
		case int64:
			return strconv.FormatInt(t, 10)
		case float64:
			return strconv.FormatUint(uint64(t), 10)
		default:
			return ""
		}
	}
	sa, sb := norm(a), norm(b)
	return sa != "" && sa == sb
}

// pathID parses a positive numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}
