package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conversationRows(id, animalID, adopterID, advertiserID uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "animal_id", "adopter_id", "advertiser_id",
		"created_at", "updated_at", "animal_name", "adopter_name", "advertiser_name",
	}).AddRow(id, animalID, adopterID, advertiserID, now, now, "Rex", "Ana", "Bruno")
}

func TestConversationRepoFindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("existing triple returns without insert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewConversationRepo(db)

		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(3), uint64(10), uint64(20)).
			WillReturnRows(conversationRows(5, 3, 10, 20))

		d, err := repo.FindOrCreate(ctx, 3, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), d.ID)
		assert.Equal(t, "Rex", d.AnimalName)
		// No ExpectExec registered: an insert would fail the mock.
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent triple inserts then re-reads", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewConversationRepo(db)

		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(3), uint64(10), uint64(20)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(`INSERT INTO conversations`).
			WithArgs(uint64(3), uint64(10), uint64(20)).
			WillReturnResult(sqlmock.NewResult(5, 1))
		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(3), uint64(10), uint64(20)).
			WillReturnRows(conversationRows(5, 3, 10, 20))

		d, err := repo.FindOrCreate(ctx, 3, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), d.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent insert loses gracefully", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewConversationRepo(db)

		mock.ExpectQuery(`FROM conversations c`).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(`INSERT INTO conversations`).
			WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-10-20'"))
		mock.ExpectQuery(`FROM conversations c`).
			WillReturnRows(conversationRows(5, 3, 10, 20))

		d, err := repo.FindOrCreate(ctx, 3, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), d.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConversationRepoGetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("participant sees the thread", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewConversationRepo(db)

		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(5)).
			WillReturnRows(conversationRows(5, 3, 10, 20))

		d, err := repo.GetDetail(ctx, 5, 10)
		require.NoError(t, err)
		assert.Equal(t, "Bruno", d.AdvertiserName)
	})

	t.Run("outsiders are forbidden", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewConversationRepo(db)

		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(5)).
			WillReturnRows(conversationRows(5, 3, 10, 20))

		_, err = repo.GetDetail(ctx, 5, 99)
		require.ErrorIs(t, err, ErrForbidden)
	})
}
