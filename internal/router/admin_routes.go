package router

import (
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/handler"
	"github.com/adotai/adotai-backend/internal/middleware"
	"github.com/adotai/adotai-backend/internal/model"
)

// RegisterAdmin registers the moderation panel under /v1/admin,
// admin role only.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Users ----
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/block", h.Block)
	g.POST("/users/:id/unblock", h.Unblock)
	g.DELETE("/users/:id", h.DeleteUser)

	// ---- Listings ----
	g.DELETE("/animals/:id", h.RemoveAnimal)

	// ---- Reports ----
	g.GET("/reports", h.ListReports)
	g.POST("/reports/:id/resolve", h.ResolveReport)
	g.POST("/reports/:id/dismiss", h.DismissReport)

	// ---- Adoption request overrides ----
	g.POST("/requests/:id/approve", h.ForceApprove)
	g.POST("/requests/:id/reject", h.ForceReject)
}
