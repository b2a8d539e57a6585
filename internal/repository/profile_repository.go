package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/adotai/adotai-backend/internal/model"
)

// ProfileRepo reads and mutates application profiles (the 'profiles'
// table). Profile rows are created by a database trigger when the
// auth identity is inserted, which makes their visibility eventually
// consistent with signup; Resolve exists to paper over that gap.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileCols = "id,user_id,name,email,role,phone,city,bio,avatar_url,is_active,created_at,updated_at"

func scanProfile(row *sql.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Role, &p.Phone,
		&p.City, &p.Bio, &p.AvatarURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Resolve finds the profile for an authenticated caller using three
// ordered, short-circuiting strategies:
//
//  1. by profile id equal to the auth id (the common case where the
//     trigger kept the ids aligned), visible rows only
//  2. by email, visible rows only
//  3. privileged: by auth id, ignoring the is_active filter
//
// The first hit wins. When every strategy misses, ErrProfileNotFound
// is returned; its message is shown to the user as-is. Login, /me,
// listing creation and ownership checks all go through here so the
// branching exists exactly once.
func (r *ProfileRepo) Resolve(ctx context.Context, authID uint64, email string) (model.Profile, error) {
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=? AND is_active=1 LIMIT 1", authID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, err
	}

	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		p, err = scanProfile(r.DB.QueryRowContext(ctx,
			"SELECT "+profileCols+" FROM profiles WHERE email=? AND is_active=1 LIMIT 1", email))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, err
		}
	}

	p, err = scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE user_id=? LIMIT 1", authID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, err
	}
	return model.Profile{}, ErrProfileNotFound
}

// GetByID fetches a profile by its own id, active or not. Admin and
// public profile views use it.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// CompleteSignup updates (never inserts) the trigger-created profile
// row with the registration form fields. RowsAffected zero means the
// trigger has not materialized the row yet; that is reported as
// sql.ErrNoRows so the caller can run its compensating delete.
func (r *ProfileRepo) CompleteSignup(ctx context.Context, userID uint64, name, role, phone, city, bio string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET name=?, role=?, phone=?, city=?, bio=?, updated_at=CURRENT_TIMESTAMP
		 WHERE user_id=?`,
		strings.TrimSpace(name), role, strings.TrimSpace(phone), strings.TrimSpace(city), bio, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Update edits the caller-editable profile fields.
func (r *ProfileRepo) Update(ctx context.Context, id uint64, name, phone, city, bio string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET name=?, phone=?, city=?, bio=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		strings.TrimSpace(name), strings.TrimSpace(phone), strings.TrimSpace(city), bio, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetAvatar records the public URL of an uploaded avatar.
func (r *ProfileRepo) SetAvatar(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET avatar_url=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", url, id)
	return err
}

// SetActive blocks or unblocks a profile (admin moderation).
func (r *ProfileRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET is_active=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns every profile ordered by id, for the admin panel.
func (r *ProfileRepo) ListAll(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileCols+" FROM profiles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Role, &p.Phone,
			&p.City, &p.Bio, &p.AvatarURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
