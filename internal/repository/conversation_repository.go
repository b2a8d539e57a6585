package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adotai/adotai-backend/internal/model"
)

// ErrConversationNotFound is returned when a conversation cannot be
// found in the DB.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepo persists conversations keyed by the
// (animal_id, adopter_id, advertiser_id) triple. The table carries a
// unique index on the triple, so the query-then-insert in FindOrCreate
// cannot produce duplicates even under concurrent starts; a losing
// racer hits the duplicate-key error and re-reads the winner's row.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo returns a new repo bound to the given database.
func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{db: db} }

const conversationDetailQuery = `SELECT c.id, c.animal_id, c.adopter_id, c.advertiser_id,
	c.created_at, c.updated_at,
	a.name AS animal_name, pad.name AS adopter_name, pav.name AS advertiser_name
	FROM conversations c
	JOIN animals a ON a.id = c.animal_id
	JOIN profiles pad ON pad.id = c.adopter_id
	JOIN profiles pav ON pav.id = c.advertiser_id`

func scanConversationDetail(row *sql.Row) (model.ConversationDetail, error) {
	var d model.ConversationDetail
	err := row.Scan(&d.ID, &d.AnimalID, &d.AdopterID, &d.AdvertiserID,
		&d.CreatedAt, &d.UpdatedAt, &d.AnimalName, &d.AdopterName, &d.AdvertiserName)
	return d, err
}

// FindOrCreate returns the conversation for the triple, creating it if
// absent. Both paths re-fetch the fully denormalized shape so callers
// always get the joined names. Idempotent: a second call with the same
// triple performs no insert.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, animalID, adopterID, advertiserID uint64) (model.ConversationDetail, error) {
	d, err := r.findByTriple(ctx, animalID, adopterID, advertiserID)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.ConversationDetail{}, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO conversations (animal_id, adopter_id, advertiser_id) VALUES (?,?,?)",
		animalID, adopterID, advertiserID)
	if err != nil && !isDuplicateKey(err) {
		return model.ConversationDetail{}, err
	}
	// Duplicate key means another caller created it between the check
	// and the insert; the re-read below returns their row either way.
	d, err = r.findByTriple(ctx, animalID, adopterID, advertiserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConversationDetail{}, ErrConversationNotFound
	}
	return d, err
}

func (r *ConversationRepo) findByTriple(ctx context.Context, animalID, adopterID, advertiserID uint64) (model.ConversationDetail, error) {
	return scanConversationDetail(r.db.QueryRowContext(ctx,
		conversationDetailQuery+" WHERE c.animal_id=? AND c.adopter_id=? AND c.advertiser_id=? LIMIT 1",
		animalID, adopterID, advertiserID))
}

// GetDetail fetches one denormalized conversation by id, but only if
// the given profile is one of its two parties.
func (r *ConversationRepo) GetDetail(ctx context.Context, id, profileID uint64) (model.ConversationDetail, error) {
	d, err := scanConversationDetail(r.db.QueryRowContext(ctx,
		conversationDetailQuery+" WHERE c.id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrConversationNotFound
	}
	if err != nil {
		return d, err
	}
	if d.AdopterID != profileID && d.AdvertiserID != profileID {
		return model.ConversationDetail{}, ErrForbidden
	}
	return d, nil
}

// ListForProfile returns every conversation the profile participates
// in, most recently active first.
func (r *ConversationRepo) ListForProfile(ctx context.Context, profileID uint64) ([]model.ConversationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		conversationDetailQuery+` WHERE c.adopter_id=? OR c.advertiser_id=?
		ORDER BY c.updated_at DESC`, profileID, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ConversationDetail
	for rows.Next() {
		var d model.ConversationDetail
		if err := rows.Scan(&d.ID, &d.AnimalID, &d.AdopterID, &d.AdvertiserID,
			&d.CreatedAt, &d.UpdatedAt, &d.AnimalName, &d.AdopterName, &d.AdvertiserName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListSimple returns the chat façade's flattened shape: peer name
// resolved relative to the caller plus a last-message preview, ordered
// by recency.
func (r *ConversationRepo) ListSimple(ctx context.Context, profileID uint64) ([]model.SimpleConversation, error) {
	const q = `SELECT c.id, c.animal_id, a.name,
		CASE WHEN c.adopter_id=? THEN c.advertiser_id ELSE c.adopter_id END AS peer_id,
		CASE WHEN c.adopter_id=? THEN pav.name ELSE pad.name END AS peer_name,
		COALESCE((SELECT m.content FROM messages m
			WHERE m.conversation_id = c.id ORDER BY m.id DESC LIMIT 1), '') AS last_message,
		c.updated_at
		FROM conversations c
		JOIN animals a ON a.id = c.animal_id
		JOIN profiles pad ON pad.id = c.adopter_id
		JOIN profiles pav ON pav.id = c.advertiser_id
		WHERE c.adopter_id=? OR c.advertiser_id=?
		ORDER BY c.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, q, profileID, profileID, profileID, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SimpleConversation
	for rows.Next() {
		var s model.SimpleConversation
		if err := rows.Scan(&s.ID, &s.AnimalID, &s.AnimalName, &s.PeerID, &s.PeerName,
			&s.LastMessage, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IsParticipant reports whether the profile is a party to the
// conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, convID, profileID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM conversations WHERE id=? AND (adopter_id=? OR advertiser_id=?) LIMIT 1",
		convID, profileID, profileID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
