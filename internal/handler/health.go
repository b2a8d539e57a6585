package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/adotai/adotai-backend/internal/database"
    "github.com/adotai/adotai-backend/internal/repository"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running. It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// ReadyHandler answers the readiness probe. Unlike Health it talks to
// the database, and it classifies failures: a missing core table is a
// fresh deployment whose migrations have not been applied, which
// operators fix differently than an unreachable database, so the two
// answers are distinct.
type ReadyHandler struct {
    DB *sql.DB
}

func NewReadyHandler(db *sql.DB) *ReadyHandler { return &ReadyHandler{DB: db} }

// Ready handles GET /readyz. Responses:
//
//	200 {"status":"ready"}           – database reachable, schema present
//	503 {"status":"setup_required"}  – reachable but core tables missing
//	503 {"status":"unavailable"}     – database unreachable or other failure
func (h *ReadyHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
    defer cancel()

    if err := h.DB.PingContext(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
    }
    if err := database.ProbeSchema(ctx, h.DB); err != nil {
        if repository.IsMissingSchema(err) {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "setup_required"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
