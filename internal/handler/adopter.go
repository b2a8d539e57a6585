package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// AdopterHandler serves the adopter side of the marketplace: filing
// adoption requests and tracking their status.
type AdopterHandler struct {
	Profiles *repository.ProfileRepo
	Requests *repository.AdoptionRequestRepo
}

func NewAdopterHandler(p *repository.ProfileRepo, r *repository.AdoptionRequestRepo) *AdopterHandler {
	return &AdopterHandler{Profiles: p, Requests: r}
}

type adoptionReq struct {
	AnimalID uint64 `json:"animal_id"`
	Message  string `json:"message"`
	VisitAt  string `json:"visit_at"` // RFC3339, optional
}

// CreateRequest handles POST /adopter/requests. One pending request
// per adopter per animal; duplicates come back as 409.
func (h *AdopterHandler) CreateRequest(c echo.Context) error {
	var req adoptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AnimalID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "animal_id required"})
	}
	var visitAt *time.Time
	if s := strings.TrimSpace(req.VisitAt); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "visit_at must be RFC3339"})
		}
		visitAt = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	ar := model.AdoptionRequest{
		AnimalID:  req.AnimalID,
		AdopterID: p.ID,
		Status:    model.RequestPending,
		Message:   strings.TrimSpace(req.Message),
		VisitAt:   visitAt,
	}
	if err := h.Requests.Create(ctx, &ar); err != nil {
		switch {
		case errors.Is(err, repository.ErrAnimalNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "animal not open for requests"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     ar.ID,
		"status": ar.Status,
	})
}

// MyRequests handles GET /adopter/requests.
func (h *AdopterHandler) MyRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	summaries, err := h.Requests.ListByAdopter(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestSummaryParts(summaries)})
}
