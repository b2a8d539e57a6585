package router

import (
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/handler"
	"github.com/adotai/adotai-backend/internal/middleware"
	"github.com/adotai/adotai-backend/internal/model"
)

// RegisterAdopter registers adopter-scoped endpoints under /v1. All
// routes require a valid JWT and the adopter role; admins pass too so
// support can act on a user's behalf.
func RegisterAdopter(e *echo.Echo, h *handler.AdopterHandler, jwtSecret string) {
	g := e.Group(
		"/v1/adopter",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdopter, model.RoleAdmin),
	)

	g.POST("/requests", h.CreateRequest)
	g.GET("/requests", h.MyRequests)
}
