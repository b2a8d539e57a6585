package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/queue"
	"github.com/adotai/adotai-backend/internal/repository"
	queuepublisher "github.com/adotai/adotai-backend/internal/service"
	"github.com/adotai/adotai-backend/internal/storage"
)

// AdvertiserHandler serves the advertiser dashboard: managing own
// listings and deciding adoption requests.
type AdvertiserHandler struct {
	Profiles *repository.ProfileRepo
	Animals  *repository.AnimalRepo
	RequestRepo *repository.AdoptionRequestRepo
	Uploads  *storage.Uploader
}

func NewAdvertiserHandler(p *repository.ProfileRepo, a *repository.AnimalRepo, r *repository.AdoptionRequestRepo, u *storage.Uploader) *AdvertiserHandler {
	return &AdvertiserHandler{Profiles: p, Animals: a, RequestRepo: r, Uploads: u}
}

type animalReq struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	AgeMonths   uint32   `json:"age_months"`
	Size        string   `json:"size"`
	Gender      string   `json:"gender"`
	Description string   `json:"description"`
	City        string   `json:"city"`
	Status      string   `json:"status"`
	PhotoURLs   []string `json:"photo_urls"`
}

func (r animalReq) validate() string {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Species) == "" {
		return "name and species required"
	}
	switch strings.ToLower(r.Size) {
	case "small", "medium", "large":
	default:
		return "size must be small, medium or large"
	}
	switch strings.ToLower(r.Gender) {
	case "male", "female":
	default:
		return "gender must be male or female"
	}
	return ""
}

type requestSummaryPart struct {
	ID          uint64  `json:"id"`
	AnimalID    uint64  `json:"animal_id"`
	AnimalName  string  `json:"animal_name"`
	AdopterID   uint64  `json:"adopter_id"`
	AdopterName string  `json:"adopter_name"`
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	VisitAt     *string `json:"visit_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toRequestSummaryPart(s model.RequestSummary) requestSummaryPart {
	out := requestSummaryPart{
		ID:          s.ID,
		AnimalID:    s.AnimalID,
		AnimalName:  s.AnimalName,
		AdopterID:   s.AdopterID,
		AdopterName: s.AdopterName,
		Status:      s.Status,
		Message:     s.Message,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.VisitAt != nil {
		v := s.VisitAt.UTC().Format(time.RFC3339)
		out.VisitAt = &v
	}
	return out
}

func toRequestSummaryParts(ss []model.RequestSummary) []requestSummaryPart {
	out := make([]requestSummaryPart, 0, len(ss))
	for _, s := range ss {
		out = append(out, toRequestSummaryPart(s))
	}
	return out
}

// CreateAnimal handles POST /advertiser/animals. A listing needs at
// least one photo URL; photos uploaded separately go through
// UploadPhoto first and their URLs come back here.
func (h *AdvertiserHandler) CreateAnimal(c echo.Context) error {
	var req animalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if len(req.PhotoURLs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one photo required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	a := model.Animal{
		AdvertiserID: p.ID,
		Name:         strings.TrimSpace(req.Name),
		Species:      strings.ToLower(strings.TrimSpace(req.Species)),
		Breed:        strings.TrimSpace(req.Breed),
		AgeMonths:    req.AgeMonths,
		Size:         strings.ToLower(req.Size),
		Gender:       strings.ToLower(req.Gender),
		Description:  req.Description,
		City:         strings.TrimSpace(req.City),
		Status:       model.AnimalAvailable,
	}
	if a.City == "" {
		a.City = p.City
	}
	if err := h.Animals.Create(ctx, &a, req.PhotoURLs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create animal failed"})
	}

	l, err := h.Animals.GetListing(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusCreated, echo.Map{"id": a.ID})
	}
	return c.JSON(http.StatusCreated, toListingPart(l))
}

// UpdateAnimal handles PUT /advertiser/animals/:id, scoped to the
// caller's own listings.
func (h *AdvertiserHandler) UpdateAnimal(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}
	var req animalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case "", model.AnimalAvailable, model.AnimalPending, model.AnimalAdopted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	a := model.Animal{
		Name:        strings.TrimSpace(req.Name),
		Species:     strings.ToLower(strings.TrimSpace(req.Species)),
		Breed:       strings.TrimSpace(req.Breed),
		AgeMonths:   req.AgeMonths,
		Size:        strings.ToLower(req.Size),
		Gender:      strings.ToLower(req.Gender),
		Description: req.Description,
		City:        strings.TrimSpace(req.City),
	}
	if err := h.Animals.Update(ctx, id, p.ID, a); err != nil {
		// No rows means the listing does not exist or belongs to
		// someone else; both look the same to the caller.
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	// Ownership was just proven by the scoped update above.
	if status != "" {
		if err := h.Animals.UpdateStatus(ctx, id, status); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	l, err := h.Animals.GetListing(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	}
	return c.JSON(http.StatusOK, toListingPart(l))
}

// MyAnimals handles GET /advertiser/animals.
func (h *AdvertiserHandler) MyAnimals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	listings, err := h.Animals.ListByAdvertiser(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"animals": toListingParts(listings)})
}

// UploadPhoto handles POST /advertiser/animals/:id/photos: multipart
// upload, stored in S3, URL appended to the listing.
func (h *AdvertiserHandler) UploadPhoto(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read photo"})
	}
	defer f.Close()

	url, err := h.Uploads.Upload(ctx, "animals", fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "photo storage not configured"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	if err := h.Animals.AddPhoto(ctx, id, p.ID, url); err != nil {
		switch {
		case errors.Is(err, repository.ErrAnimalNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save photo failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// Requests handles GET /advertiser/requests: every request against the
// caller's animals, pending first.
func (h *AdvertiserHandler) Requests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	summaries, err := h.RequestRepo.ListForAdvertiser(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestSummaryParts(summaries)})
}

// AnimalRequests handles GET /advertiser/animals/:id/requests. The
// ownership check normalizes both ids before comparing.
func (h *AdvertiserHandler) AnimalRequests(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	a, err := h.Animals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAnimalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !sameID(a.AdvertiserID, p.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	summaries, err := h.RequestRepo.ListByAnimal(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": toRequestSummaryParts(summaries)})
}

// Approve handles POST /advertiser/requests/:id/approve. The cascade
// runs inside one transaction in the repository; only after commit is
// the adoption.approved event published, best effort.
func (h *AdvertiserHandler) Approve(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}

	res, err := h.RequestRepo.Approve(ctx, id, p.ID, false)
	if err != nil {
		return requestDecisionError(c, err)
	}
	h.publishApproved(res, p)
	return c.JSON(http.StatusOK, echo.Map{
		"status":   model.RequestApproved,
		"rejected": res.Rejected,
	})
}

// Reject handles POST /advertiser/requests/:id/reject.
func (h *AdvertiserHandler) Reject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	if err := h.RequestRepo.Reject(ctx, id, p.ID, false); err != nil {
		return requestDecisionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": model.RequestRejected})
}

// publishApproved fills the event with display names and hands it to
// the broker. Failures are logged, never surfaced: the cascade is
// already committed.
func (h *AdvertiserHandler) publishApproved(res repository.ApproveResult, advertiser model.Profile) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := queue.AdoptionApprovedEvent{
		RequestID:      res.RequestID,
		AnimalID:       res.AnimalID,
		AdopterID:      res.AdopterID,
		AdvertiserID:   advertiser.ID,
		AdvertiserName: advertiser.Name,
		RejectedCount:  res.Rejected,
		ApprovedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if a, err := h.Animals.GetByID(ctx, res.AnimalID); err == nil {
		ev.AnimalName = a.Name
	}
	if ap, err := h.Profiles.GetByID(ctx, res.AdopterID); err == nil {
		ev.AdopterName = ap.Name
	}
	if err := queuepublisher.PublishAdoptionApproved(ctx, ev); err != nil {
		log.Printf("advertiser: publish adoption.approved for request %d: %v", ev.RequestID, err)
	}
}

func requestDecisionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "adoption request not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "request already decided"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}

// profileError maps profile-resolution failures to responses: the
// resolution chain exhausting all strategies is the one case with a
// user-facing message of its own.
func profileError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrProfileNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
