package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// AdminHandler is the moderation panel: user blocking, listing
// removal, report triage and overriding stuck adoption requests.
type AdminHandler struct {
	Users    *repository.UserRepo
	Profiles *repository.ProfileRepo
	Animals  *repository.AnimalRepo
	Requests *repository.AdoptionRequestRepo
	Reports  *repository.ReportRepo
}

func NewAdminHandler(u *repository.UserRepo, p *repository.ProfileRepo, a *repository.AnimalRepo, rq *repository.AdoptionRequestRepo, rp *repository.ReportRepo) *AdminHandler {
	return &AdminHandler{Users: u, Profiles: p, Animals: a, Requests: rq, Reports: rp}
}

type adminProfilePart struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	City      string `json:"city,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type reportPart struct {
	ID         uint64 `json:"id"`
	ReporterID uint64 `json:"reporter_id"`
	TargetType string `json:"target_type"`
	TargetID   uint64 `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.Profiles.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminProfilePart, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, adminProfilePart{
			ID:        p.ID,
			UserID:    p.UserID,
			Name:      p.Name,
			Email:     p.Email,
			Role:      p.Role,
			City:      p.City,
			IsActive:  p.IsActive,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Block handles POST /admin/users/:id/block. The profile stays in the
// database; is_active=0 hides it from the public resolve strategies.
func (h *AdminHandler) Block(c echo.Context) error {
	return h.setActive(c, false)
}

// Unblock handles POST /admin/users/:id/unblock.
func (h *AdminHandler) Unblock(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *AdminHandler) setActive(c echo.Context, active bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Profiles.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_active": active})
}

// DeleteUser handles DELETE /admin/users/:id. Removes the auth
// identity, its refresh tokens and the profile row in one transaction.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Role == model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete an admin"})
	}
	if err := h.Users.Delete(ctx, p.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveAnimal handles DELETE /admin/animals/:id. Listings are never
// hard-deleted; the status flips to removed and browse stops showing
// it.
func (h *AdminHandler) RemoveAnimal(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Animals.UpdateStatus(ctx, id, model.AnimalRemoved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.AnimalRemoved})
}

// ListReports handles GET /admin/reports?status=pending.
func (h *AdminHandler) ListReports(c echo.Context) error {
	status := strings.ToLower(c.QueryParam("status"))
	switch status {
	case "", model.ReportPending, model.ReportResolved, model.ReportDismissed:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reports, err := h.Reports.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]reportPart, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportPart{
			ID:         r.ID,
			ReporterID: r.ReporterID,
			TargetType: r.TargetType,
			TargetID:   r.TargetID,
			Reason:     r.Reason,
			Details:    r.Details,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"reports": out})
}

// ResolveReport handles POST /admin/reports/:id/resolve.
func (h *AdminHandler) ResolveReport(c echo.Context) error {
	return h.setReportStatus(c, model.ReportResolved)
}

// DismissReport handles POST /admin/reports/:id/dismiss.
func (h *AdminHandler) DismissReport(c echo.Context) error {
	return h.setReportStatus(c, model.ReportDismissed)
}

func (h *AdminHandler) setReportStatus(c echo.Context, status string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reports.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// ForceApprove handles POST /admin/requests/:id/approve: the approval
// cascade without the ownership check, for moderation escalations.
func (h *AdminHandler) ForceApprove(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Requests.Approve(ctx, id, 0, true)
	if err != nil {
		return requestDecisionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   model.RequestApproved,
		"rejected": res.Rejected,
	})
}

// ForceReject handles POST /admin/requests/:id/reject.
func (h *AdminHandler) ForceReject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Requests.Reject(ctx, id, 0, true); err != nil {
		return requestDecisionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.RequestRejected})
}
