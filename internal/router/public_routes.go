package router

import (
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints:
// searching animal listings and viewing a listing page. No JWT or role
// middleware runs here so guests can browse before signing up. The
// optional extra middlewares (response cache, rate limiter) apply to
// this group only; nil entries are skipped so a missing Redis keeps
// the routes plain.
func RegisterPublic(e *echo.Echo, a *handler.AnimalHandler, p *handler.ProfileHandler, extra ...echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	for _, mw := range extra {
		if mw != nil {
			mws = append(mws, mw)
		}
	}
	g := e.Group("/v1", mws...)

	g.GET("/animals", a.Search)
	g.GET("/animals/:id", a.Get)
	// Public profile view, phone withheld.
	g.GET("/profiles/:id", p.Get)
}
