package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adotai/adotai-backend/internal/model"
)

// MessageRepo persists append-only chat messages.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new repo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create appends a message and bumps the parent conversation's
// updated_at in the same transaction, so list views sorted by recency
// never observe one without the other. The sender must be a party to
// the conversation.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM conversations WHERE id=? AND (adopter_id=? OR advertiser_id=?) LIMIT 1",
		m.ConversationID, m.SenderID, m.SenderID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, sender_id, content) VALUES (?,?,?)",
		m.ConversationID, m.SenderID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = time.Now().UTC()

	if _, err = tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at=CURRENT_TIMESTAMP WHERE id=?",
		m.ConversationID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// List returns one page of a conversation's messages in chronological
// order. The handler verifies participation first.
func (r *MessageRepo) List(ctx context.Context, convID uint64, page, pageSize int) ([]model.Message, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, sender_id, content, created_at
		 FROM messages WHERE conversation_id=? ORDER BY id ASC LIMIT ? OFFSET ?`,
		convID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
