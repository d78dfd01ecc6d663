package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/pkg/validator"
)

func setupUserHandlerTest(t *testing.T, user *models.User) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewUserHandler(
		database.NewUserRepository(db),
		database.NewRideRepository(db),
		validator.NewCredentialValidator([]string{"geu.ac.in"}),
		logger,
	)

	router := gin.New()
	authed := router.Group("", fakeAuth(user))
	authed.PUT("/api/users/me", handler.UpdateProfile)

	return router, mock
}

func putJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("PUT", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpdateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		user := testStudent()
		router, mock := setupUserHandlerTest(t, user)
		now := time.Now()

		mock.ExpectQuery(`UPDATE users`).
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
				user.ID, "Asha R", user.Email, "hash", "GEU2301", "9876543210",
				"", "student", "active", 0, 0.0,
				nil, nil, now, now,
			))

		w := putJSON(router, "/api/users/me", gin.H{
			"name":        "Asha R",
			"phoneNumber": "9876543210",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Asha R")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Phone", func(t *testing.T) {
		router, mock := setupUserHandlerTest(t, testStudent())

		mock.ExpectQuery(`UPDATE users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_phone_number_key"})

		w := putJSON(router, "/api/users/me", gin.H{"phoneNumber": "9876543210"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "phone number already exists")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Valid Fields", func(t *testing.T) {
		router, _ := setupUserHandlerTest(t, testStudent())

		w := putJSON(router, "/api/users/me", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "No valid fields to update")
	})

	t.Run("Invalid Phone", func(t *testing.T) {
		router, _ := setupUserHandlerTest(t, testStudent())

		w := putJSON(router, "/api/users/me", gin.H{"phoneNumber": "12345"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
