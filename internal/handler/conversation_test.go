package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotai/adotai-backend/internal/repository"
)

func conversationTestHandler(t *testing.T) (*ConversationHandler, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	h := NewConversationHandler(
		repository.NewProfileRepo(db),
		repository.NewAnimalRepo(db),
		repository.NewConversationRepo(db),
		repository.NewMessageRepo(db))
	return h, mock, db
}

func authedPost(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(7))
	c.Set("email", "ana@example.com")
	return c, rec
}

func animalRow(id, advertiserID uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "advertiser_id", "name", "species", "breed", "age_months", "size", "gender",
		"description", "city", "status", "created_at", "updated_at",
	}).AddRow(id, advertiserID, "Rex", "dog", "", uint32(24), "medium", "male", "", "Porto", "available", testNow(), testNow())
}

func TestConversationStart(t *testing.T) {
	t.Run("advertiser side derived from the animal", func(t *testing.T) {
		h, mock, db := conversationTestHandler(t)
		defer db.Close()
		e := echo.New()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WithArgs(uint64(7)).
			WillReturnRows(activeProfileRows())
		mock.ExpectQuery(`FROM animals WHERE id=\?`).
			WithArgs(uint64(3)).
			WillReturnRows(animalRow(3, 20))
		// Existing thread for the triple: no insert happens.
		mock.ExpectQuery(`FROM conversations c`).
			WithArgs(uint64(3), uint64(7), uint64(20)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "animal_id", "adopter_id", "advertiser_id",
				"created_at", "updated_at", "animal_name", "adopter_name", "advertiser_name",
			}).AddRow(5, 3, 7, 20, testNow(), testNow(), "Rex", "Ana", "Bruno"))

		c, rec := authedPost(e, "/v1/conversations", `{"animal_id":3}`)
		require.NoError(t, h.Start(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"advertiser_id":20`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("own animal is rejected", func(t *testing.T) {
		h, mock, db := conversationTestHandler(t)
		defer db.Close()
		e := echo.New()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WillReturnRows(activeProfileRows())
		mock.ExpectQuery(`FROM animals WHERE id=\?`).
			WillReturnRows(animalRow(3, 7)) // caller's own listing

		c, rec := authedPost(e, "/v1/conversations", `{"animal_id":3}`)
		require.NoError(t, h.Start(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing animal", func(t *testing.T) {
		h, mock, db := conversationTestHandler(t)
		defer db.Close()
		e := echo.New()

		mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
			WillReturnRows(activeProfileRows())
		mock.ExpectQuery(`FROM animals WHERE id=\?`).
			WillReturnError(sql.ErrNoRows)

		c, rec := authedPost(e, "/v1/conversations", `{"animal_id":99}`)
		require.NoError(t, h.Start(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestConversationSendMessage(t *testing.T) {
	h, mock, db := conversationTestHandler(t)
	defer db.Close()
	e := echo.New()

	mock.ExpectQuery(`FROM profiles WHERE id=\? AND is_active=1`).
		WillReturnRows(activeProfileRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM conversations WHERE id=\?`).
		WithArgs(uint64(5), uint64(7), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO messages`).
		WithArgs(uint64(5), uint64(7), "hello").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`UPDATE conversations SET updated_at=CURRENT_TIMESTAMP`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := authedPost(e, "/v1/conversations/5/messages", `{"content":"hello"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":11`)
	require.NoError(t, mock.ExpectationsWereMet())
}
