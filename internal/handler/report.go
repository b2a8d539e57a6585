package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// ReportHandler lets any signed-in user report a listing or another
// user. Reports land on the admin moderation queue.
type ReportHandler struct {
	Profiles *repository.ProfileRepo
	Reports  *repository.ReportRepo
}

func NewReportHandler(p *repository.ProfileRepo, r *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Profiles: p, Reports: r}
}

type reportReq struct {
	TargetType string `json:"target_type"` // animal | user
	TargetID   uint64 `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}

// Create handles POST /reports.
func (h *ReportHandler) Create(c echo.Context) error {
	var req reportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	tt := strings.ToLower(strings.TrimSpace(req.TargetType))
	if tt != model.ReportTargetAnimal && tt != model.ReportTargetUser {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_type must be animal or user"})
	}
	if req.TargetID == 0 || strings.TrimSpace(req.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_id and reason required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	rep := model.Report{
		ReporterID: p.ID,
		TargetType: tt,
		TargetID:   req.TargetID,
		Reason:     strings.TrimSpace(req.Reason),
		Details:    req.Details,
		Status:     model.ReportPending,
	}
	if err := h.Reports.Create(ctx, &rep); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     rep.ID,
		"status": rep.Status,
	})
}
