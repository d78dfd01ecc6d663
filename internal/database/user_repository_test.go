package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscruz/rideshare-backend/internal/models"
)

var userTestColumns = []string{
	"id", "name", "email", "password_hash", "college_id", "phone_number",
	"profile_picture", "role", "status", "points", "average_rating",
	"reset_password_token", "reset_password_expires", "created_at", "updated_at",
}

func newTestUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewUserRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestUserCreate(t *testing.T) {
	t.Run("Success Sets Defaults", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user := &models.User{
			Name:         "Asha Rawat",
			Email:        "asha@geu.ac.in",
			PasswordHash: "hash",
			CollegeID:    "GEU2301",
		}
		err := repo.Create(user)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, models.RoleStudent, user.Role)
		assert.Equal(t, models.UserStatusActive, user.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := repo.Create(&models.User{Email: "asha@geu.ac.in"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Phone", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_phone_number_key"})

		err := repo.Create(&models.User{Email: "asha@geu.ac.in", PhoneNumber: "9876543210"})
		assert.ErrorIs(t, err, ErrDuplicatePhone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserGetByEmail(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`FROM users`).
			WithArgs("asha@geu.ac.in").
			WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(
				userID, "Asha Rawat", "asha@geu.ac.in", "hash", "GEU2301", "",
				"", "student", "active", 15, 4.2,
				nil, nil, now, now,
			))

		user, err := repo.GetByEmail("asha@geu.ac.in")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, 15, user.Points)
		assert.InDelta(t, 4.2, user.AverageRating, 0.001)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery(`FROM users`).
			WithArgs("nobody@geu.ac.in").
			WillReturnRows(sqlmock.NewRows(userTestColumns))

		user, err := repo.GetByEmail("nobody@geu.ac.in")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserAddPoints(t *testing.T) {
	repo, mock := newTestUserRepo(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users`).
		WithArgs(userID, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddPoints(repo.db, userID, 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList(t *testing.T) {
	t.Run("Pagination Args", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)
		now := time.Now()

		mock.ExpectQuery(`FROM users`).
			WithArgs("asha", 10, 20).
			WillReturnRows(sqlmock.NewRows(userTestColumns).AddRow(
				uuid.New(), "Asha Rawat", "asha@geu.ac.in", "hash", "GEU2301", "",
				"", "student", "active", 0, 0.0,
				nil, nil, now, now,
			))

		users, err := repo.List("asha", 10, 20)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Count", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery(`SELECT COUNT`).
			WithArgs("").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		total, err := repo.Count("")
		require.NoError(t, err)
		assert.Equal(t, 42, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
