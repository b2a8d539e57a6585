package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// AnimalHandler serves the public browse surface: anyone, signed in or
// not, can search listings and open a listing page.
type AnimalHandler struct {
	Animals *repository.AnimalRepo
}

func NewAnimalHandler(a *repository.AnimalRepo) *AnimalHandler {
	return &AnimalHandler{Animals: a}
}

type listingPart struct {
	ID             uint64   `json:"id"`
	AdvertiserID   uint64   `json:"advertiser_id"`
	AdvertiserName string   `json:"advertiser_name"`
	AdvertiserCity string   `json:"advertiser_city,omitempty"`
	Name           string   `json:"name"`
	Species        string   `json:"species"`
	Breed          string   `json:"breed,omitempty"`
	AgeMonths      uint32   `json:"age_months"`
	Size           string   `json:"size"`
	Gender         string   `json:"gender"`
	Description    string   `json:"description,omitempty"`
	City           string   `json:"city"`
	Status         string   `json:"status"`
	PhotoURLs      []string `json:"photo_urls"`
	CreatedAt      string   `json:"created_at"`
}

func toListingPart(l model.AnimalListing) listingPart {
	urls := l.PhotoURLs
	if urls == nil {
		urls = []string{}
	}
	return listingPart{
		ID:             l.ID,
		AdvertiserID:   l.AdvertiserID,
		AdvertiserName: l.AdvertiserName,
		AdvertiserCity: l.AdvertiserCity,
		Name:           l.Name,
		Species:        l.Species,
		Breed:          l.Breed,
		AgeMonths:      l.AgeMonths,
		Size:           l.Size,
		Gender:         l.Gender,
		Description:    l.Description,
		City:           l.City,
		Status:         l.Status,
		PhotoURLs:      urls,
		CreatedAt:      l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toListingParts(ls []model.AnimalListing) []listingPart {
	out := make([]listingPart, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListingPart(l))
	}
	return out
}

// Search handles GET /animals with optional filter query params.
func (h *AnimalHandler) Search(c echo.Context) error {
	q := repository.AnimalSearchQuery{
		Species: strings.ToLower(c.QueryParam("species")),
		Size:    strings.ToLower(c.QueryParam("size")),
		Gender:  strings.ToLower(c.QueryParam("gender")),
		City:    c.QueryParam("city"),
		Status:  strings.ToLower(c.QueryParam("status")),
		Text:    c.QueryParam("q"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	listings, total, err := h.Animals.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"animals": toListingParts(listings),
		"total":   total,
	})
}

// Get handles GET /animals/:id, the listing detail page.
func (h *AnimalHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid animal id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.Animals.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAnimalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if l.Status == model.AnimalRemoved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
	}
	return c.JSON(http.StatusOK, toListingPart(l))
}
