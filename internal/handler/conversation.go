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

// ConversationHandler serves the full conversation surface. Starting a
// conversation is find-or-create on the (animal, adopter, advertiser)
// triple, so clicking "chat" twice lands in the same thread.
type ConversationHandler struct {
	Profiles      *repository.ProfileRepo
	Animals       *repository.AnimalRepo
	Conversations *repository.ConversationRepo
	Messages      *repository.MessageRepo
}

func NewConversationHandler(p *repository.ProfileRepo, a *repository.AnimalRepo, cv *repository.ConversationRepo, m *repository.MessageRepo) *ConversationHandler {
	return &ConversationHandler{Profiles: p, Animals: a, Conversations: cv, Messages: m}
}

type startConversationReq struct {
	AnimalID uint64 `json:"animal_id"`
}
type sendMessageReq struct {
	Content string `json:"content"`
}

type conversationPart struct {
	ID             uint64 `json:"id"`
	AnimalID       uint64 `json:"animal_id"`
	AnimalName     string `json:"animal_name"`
	AdopterID      uint64 `json:"adopter_id"`
	AdopterName    string `json:"adopter_name"`
	AdvertiserID   uint64 `json:"advertiser_id"`
	AdvertiserName string `json:"advertiser_name"`
	UpdatedAt      string `json:"updated_at"`
}

func toConversationPart(d model.ConversationDetail) conversationPart {
	return conversationPart{
		ID:             d.ID,
		AnimalID:       d.AnimalID,
		AnimalName:     d.AnimalName,
		AdopterID:      d.AdopterID,
		AdopterName:    d.AdopterName,
		AdvertiserID:   d.AdvertiserID,
		AdvertiserName: d.AdvertiserName,
		UpdatedAt:      d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type messagePart struct {
	ID             uint64 `json:"id"`
	ConversationID uint64 `json:"conversation_id"`
	SenderID       uint64 `json:"sender_id"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

func toMessagePart(m model.Message) messagePart {
	return messagePart{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Start handles POST /conversations. The caller is the adopter side;
// the advertiser side is derived from the animal, never taken from the
// request body.
func (h *ConversationHandler) Start(c echo.Context) error {
	var req startConversationReq
	if err := c.Bind(&req); err != nil || req.AnimalID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "animal_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	a, err := h.Animals.GetByID(ctx, req.AnimalID)
	if err != nil {
		if errors.Is(err, repository.ErrAnimalNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "animal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if sameID(a.AdvertiserID, p.ID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot start a conversation about your own animal"})
	}

	d, err := h.Conversations.FindOrCreate(ctx, a.ID, p.ID, a.AdvertiserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "start conversation failed"})
	}
	return c.JSON(http.StatusOK, toConversationPart(d))
}

// List handles GET /conversations: every thread the caller is part of,
// most recent activity first.
func (h *ConversationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	details, err := h.Conversations.ListForProfile(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]conversationPart, 0, len(details))
	for _, d := range details {
		out = append(out, toConversationPart(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": out})
}

// Get handles GET /conversations/:id, participants only.
func (h *ConversationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	d, err := h.Conversations.GetDetail(ctx, id, p.ID)
	if err != nil {
		return conversationError(c, err)
	}
	return c.JSON(http.StatusOK, toConversationPart(d))
}

// ListMessages handles GET /conversations/:id/messages, chronological,
// paginated with page / page_size query params.
func (h *ConversationHandler) ListMessages(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	member, err := h.Conversations.IsParticipant(ctx, id, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !member {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	msgs, err := h.Messages.List(ctx, id, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]messagePart, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessagePart(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// SendMessage handles POST /conversations/:id/messages. The repository
// bumps the conversation's updated_at in the same transaction.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conversation id"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	m := model.Message{ConversationID: id, SenderID: p.ID, Content: req.Content}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return conversationError(c, err)
	}
	return c.JSON(http.StatusCreated, toMessagePart(m))
}

func conversationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrConversationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
}
