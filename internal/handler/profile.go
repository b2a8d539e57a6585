package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/repository"
	"github.com/adotai/adotai-backend/internal/storage"
)

// ProfileHandler serves profile pages: the caller's own editable
// profile and the public view of anyone else's.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Uploads  *storage.Uploader
}

func NewProfileHandler(p *repository.ProfileRepo, u *storage.Uploader) *ProfileHandler {
	return &ProfileHandler{Profiles: p, Uploads: u}
}

type profileUpdateReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city"`
	Bio   string `json:"bio"`
}

// Update handles PUT /profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req profileUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	if err := h.Profiles.Update(ctx, p.ID, strings.TrimSpace(req.Name), req.Phone, req.City, req.Bio); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Profiles.GetByID(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"id": p.ID})
	}
	return c.JSON(http.StatusOK, toProfilePart(updated))
}

// UploadAvatar handles POST /profile/avatar: multipart upload to S3,
// public URL saved on the profile.
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read avatar"})
	}
	defer f.Close()

	url, err := h.Uploads.Upload(ctx, "avatars", fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "photo storage not configured"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	if err := h.Profiles.SetAvatar(ctx, p.ID, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save avatar failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

// Get handles GET /profiles/:id, the public view. Phone is withheld;
// contact happens through conversations.
func (h *ProfileHandler) Get(c echo.Context) error {
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
	if !p.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}
	pub := toProfilePart(p)
	pub.Phone = ""
	return c.JSON(http.StatusOK, pub)
}
