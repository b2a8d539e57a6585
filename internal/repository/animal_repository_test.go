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

	"github.com/adotai/adotai-backend/internal/model"
)

var errNoView = errors.New("Error 1146 (42S02): Table 'adotai.animal_listings' doesn't exist")

func listingRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "advertiser_id", "name", "species", "breed", "age_months", "size", "gender",
		"description", "city", "status", "created_at", "updated_at",
		"advertiser_name", "advertiser_city", "photo_urls",
	}).AddRow(
		uint64(3), uint64(20), "Rex", "dog", "mixed", uint32(24), "medium", "male",
		"friendly", "Porto", model.AnimalAvailable, now, now,
		"Bruno", "Porto", "http://x/1.jpg|http://x/2.jpg",
	)
}

func TestAnimalRepoProbeListingView(t *testing.T) {
	ctx := context.Background()

	t.Run("view present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectQuery(`SELECT 1 FROM animal_listings`).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		repo.ProbeListingView(ctx)
		assert.True(t, repo.useView)
	})

	t.Run("view absent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectQuery(`SELECT 1 FROM animal_listings`).
			WillReturnError(errNoView)

		repo.ProbeListingView(ctx)
		assert.False(t, repo.useView)
	})

	t.Run("empty view still counts as present", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectQuery(`SELECT 1 FROM animal_listings`).
			WillReturnError(sql.ErrNoRows)

		repo.ProbeListingView(ctx)
		assert.True(t, repo.useView)
	})
}

func TestAnimalRepoGetListing(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("view and join produce the same shape", func(t *testing.T) {
		// Same row through both paths must decode identically,
		// including the split photo URLs.
		var got [2]model.AnimalListing
		for i, useView := range []bool{true, false} {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			repo := NewAnimalRepo(db)
			repo.useView = useView

			pattern := `FROM animal_listings`
			if !useView {
				pattern = `FROM animals a`
			}
			mock.ExpectQuery(pattern).
				WithArgs(uint64(3)).
				WillReturnRows(listingRows(now))

			got[i], err = repo.GetListing(ctx, 3)
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
			db.Close()
		}
		assert.Equal(t, got[0], got[1])
		assert.Equal(t, []string{"http://x/1.jpg", "http://x/2.jpg"}, got[0].PhotoURLs)
	})

	t.Run("stale view capability falls back once", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)
		repo.useView = true

		mock.ExpectQuery(`FROM animal_listings`).
			WithArgs(uint64(3)).
			WillReturnError(errNoView)
		mock.ExpectQuery(`FROM animals a`).
			WithArgs(uint64(3)).
			WillReturnRows(listingRows(now))

		l, err := repo.GetListing(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Rex", l.Name)
		assert.False(t, repo.useView)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing animal", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectQuery(`FROM animals a`).
			WithArgs(uint64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err = repo.GetListing(ctx, 99)
		require.ErrorIs(t, err, ErrAnimalNotFound)
	})
}

func TestAnimalRepoCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("animal and photos in one transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO animals`).
			WithArgs(uint64(20), "Rex", "dog", "mixed", uint32(24), "medium", "male",
				"friendly", "Porto", model.AnimalAvailable).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec(`INSERT INTO animal_photos`).
			WithArgs(uint64(3), "http://x/1.jpg").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		a := model.Animal{
			AdvertiserID: 20, Name: "Rex", Species: "dog", Breed: "mixed",
			AgeMonths: 24, Size: "medium", Gender: "male",
			Description: "friendly", City: "Porto",
		}
		require.NoError(t, repo.Create(ctx, &a, []string{"http://x/1.jpg"}))
		assert.Equal(t, uint64(3), a.ID)
		assert.Equal(t, model.AnimalAvailable, a.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("photo insert failure rolls everything back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewAnimalRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO animals`).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec(`INSERT INTO animal_photos`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		a := model.Animal{AdvertiserID: 20, Name: "Rex", Species: "dog", Size: "medium", Gender: "male"}
		require.Error(t, repo.Create(ctx, &a, []string{"http://x/1.jpg"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
