package router

import (
	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/handler"
	"github.com/adotai/adotai-backend/internal/middleware"
	"github.com/adotai/adotai-backend/internal/model"
)

// RegisterAdvertiser registers advertiser-scoped endpoints under /v1.
// All routes require a valid JWT and the advertiser role.
func RegisterAdvertiser(e *echo.Echo, h *handler.AdvertiserHandler, jwtSecret string) {
	g := e.Group(
		"/v1/advertiser",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdvertiser, model.RoleAdmin),
	)

	// ---- Listings ----
	g.POST("/animals", h.CreateAnimal)
	g.GET("/animals", h.MyAnimals)
	g.PUT("/animals/:id", h.UpdateAnimal)
	g.PATCH("/animals/:id", h.UpdateAnimal)
	g.POST("/animals/:id/photos", h.UploadPhoto)
	g.GET("/animals/:id/requests", h.AnimalRequests)

	// ---- Adoption requests ----
	g.GET("/requests", h.Requests)
	g.POST("/requests/:id/approve", h.Approve)
	g.POST("/requests/:id/reject", h.Reject)
}
