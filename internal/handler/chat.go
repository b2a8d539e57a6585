package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adotai/adotai-backend/internal/model"
	"github.com/adotai/adotai-backend/internal/repository"
)

// ChatHandler is the simplified chat facade used by the inbox widget:
// peer-oriented threads with a last-message preview, and messages that
// carry a "mine" flag so the client never compares ids.
type ChatHandler struct {
	Profiles      *repository.ProfileRepo
	Conversations *repository.ConversationRepo
	Messages      *repository.MessageRepo
}

func NewChatHandler(p *repository.ProfileRepo, cv *repository.ConversationRepo, m *repository.MessageRepo) *ChatHandler {
	return &ChatHandler{Profiles: p, Conversations: cv, Messages: m}
}

type simpleConversationPart struct {
	ID          uint64 `json:"id"`
	AnimalID    uint64 `json:"animal_id"`
	AnimalName  string `json:"animal_name"`
	PeerID      uint64 `json:"peer_id"`
	PeerName    string `json:"peer_name"`
	LastMessage string `json:"last_message"`
	UpdatedAt   string `json:"updated_at"`
}

type simpleMessagePart struct {
	ID        uint64 `json:"id"`
	SenderID  uint64 `json:"sender_id"`
	Content   string `json:"content"`
	Mine      bool   `json:"mine"`
	CreatedAt string `json:"created_at"`
}

// Threads handles GET /chat/threads.
func (h *ChatHandler) Threads(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := resolveCaller(ctx, c, h.Profiles)
	if err != nil {
		return profileError(c, err)
	}
	threads, err := h.Conversations.ListSimple(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]simpleConversationPart, 0, len(threads))
	for _, t := range threads {
		out = append(out, simpleConversationPart{
			ID:          t.ID,
			AnimalID:    t.AnimalID,
			AnimalName:  t.AnimalName,
			PeerID:      t.PeerID,
			PeerName:    t.PeerName,
			LastMessage: t.LastMessage,
			UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"threads": out})
}

// ThreadMessages handles GET /chat/threads/:id/messages.
func (h *ChatHandler) ThreadMessages(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid thread id"})
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
	out := make([]simpleMessagePart, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, simpleMessagePart{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Mine:      m.SenderID == p.ID,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// Send handles POST /chat/threads/:id/messages.
func (h *ChatHandler) Send(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid thread id"})
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
	return c.JSON(http.StatusCreated, simpleMessagePart{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Mine:      true,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	})
}
