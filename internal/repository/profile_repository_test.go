package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProfileRepo(t *testing.T) (*ProfileRepo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewProfileRepo(db), mock, db
}

func profileRows(id, userID uint64, name, email, role string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "email", "role", "phone", "city", "bio",
		"avatar_url", "is_active", "created_at", "updated_at",
	}).AddRow(id, userID, name, email, role, "", "", "", nil, active, now, now)
}

func TestProfileRepoResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("direct id hit wins", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WithArgs(uint64(7)).
			WillReturnRows(profileRows(7, 7, "Ana", "ana@example.com", "adopter", true))

		p, err := repo.Resolve(ctx, 7, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), p.ID)
		assert.Equal(t, "adopter", p.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to email lookup", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WithArgs(uint64(7)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE email=\? AND is_active=1`).
			WithArgs("ana@example.com").
			WillReturnRows(profileRows(12, 7, "Ana", "ana@example.com", "advertiser", true))

		p, err := repo.Resolve(ctx, 7, "Ana@Example.com")
		require.NoError(t, err)
		assert.Equal(t, uint64(12), p.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("privileged lookup ignores is_active", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WithArgs(uint64(7)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE email=\? AND is_active=1`).
			WithArgs("ana@example.com").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE user_id=\?`).
			WithArgs(uint64(7)).
			WillReturnRows(profileRows(12, 7, "Ana", "ana@example.com", "adopter", false))

		p, err := repo.Resolve(ctx, 7, "ana@example.com")
		require.NoError(t, err)
		assert.False(t, p.IsActive)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty email skips the email strategy", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WithArgs(uint64(7)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE user_id=\?`).
			WithArgs(uint64(7)).
			WillReturnRows(profileRows(12, 7, "Ana", "ana@example.com", "adopter", true))

		_, err := repo.Resolve(ctx, 7, "  ")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all strategies miss", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE email=\? AND is_active=1`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`FROM profiles WHERE user_id=\?`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Resolve(ctx, 7, "ana@example.com")
		require.ErrorIs(t, err, ErrProfileNotFound)
		assert.EqualError(t, err, "profile not found, contact support")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProfileRepoCompleteSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("updates the trigger-created row", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE profiles SET name=\?, role=\?`).
			WithArgs("Ana", "adopter", "123", "Lisbon", "hi", uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CompleteSignup(ctx, 7, "Ana", "adopter", "123", "Lisbon", "hi")
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row reported for compensation", func(t *testing.T) {
		repo, mock, db := setupProfileRepo(t)
		defer db.Close()

		mock.ExpectExec(`UPDATE profiles SET name=\?, role=\?`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.CompleteSignup(ctx, 7, "Ana", "adopter", "", "", "")
		require.ErrorIs(t, err, sql.ErrNoRows)
	})
}
