package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscruz/rideshare-backend/internal/models"
)

var rideTestColumns = []string{
	"id", "driver_id", "start_location", "end_location", "route",
	"departure_time", "total_seats", "available_seats", "status",
	"price", "notes", "created_at", "updated_at",
	"driver.id", "driver.name", "driver.email",
	"driver.profile_picture", "driver.average_rating",
}

func newTestRideRepo(t *testing.T) (*RideRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewRideRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func rideWithDriverRow(rideID, driverID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(rideTestColumns).AddRow(
		rideID, driverID, "Campus Gate", "City Center", "",
		now.Add(time.Hour), 3, 2, "scheduled",
		50.0, nil, now, now,
		driverID, "Ravi Mehta", "ravi@geu.ac.in", "", 4.8,
	)
}

func TestRideCreate(t *testing.T) {
	repo, mock := newTestRideRepo(t)

	mock.ExpectExec(`INSERT INTO rides`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ride := &models.Ride{
		DriverID:      uuid.New(),
		StartLocation: "Campus Gate",
		EndLocation:   "City Center",
		DepartureTime: time.Now().Add(time.Hour),
		TotalSeats:    3,
	}
	err := repo.Create(ride)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ride.ID)
	assert.Equal(t, models.RideStatusScheduled, ride.Status)
	assert.Equal(t, 3, ride.AvailableSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAvailable(t *testing.T) {
	t.Run("No Filters", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID, driverID := uuid.New(), uuid.New()

		mock.ExpectQuery(`FROM rides r`).
			WithArgs("", "").
			WillReturnRows(rideWithDriverRow(rideID, driverID))

		rides, err := repo.ListAvailable("", "", nil)
		require.NoError(t, err)
		require.Len(t, rides, 1)
		assert.Equal(t, rideID, rides[0].ID)
		require.NotNil(t, rides[0].Driver)
		assert.Equal(t, "Ravi Mehta", rides[0].Driver.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Date Filter Covers Calendar Day", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)
		dayEnd := date.AddDate(0, 0, 1)

		mock.ExpectQuery(`FROM rides r`).
			WithArgs("Campus", "City", date, dayEnd).
			WillReturnRows(sqlmock.NewRows(rideTestColumns))

		rides, err := repo.ListAvailable("Campus", "City", &date)
		require.NoError(t, err)
		assert.Empty(t, rides)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDecrementSeat(t *testing.T) {
	t.Run("Takes Seat", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`UPDATE rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		taken, err := repo.DecrementSeat(repo.db, rideID)
		require.NoError(t, err)
		assert.True(t, taken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Seat Left", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`UPDATE rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		taken, err := repo.DecrementSeat(repo.db, rideID)
		require.NoError(t, err)
		assert.False(t, taken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkCompleted(t *testing.T) {
	t.Run("From Scheduled", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`UPDATE rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		done, err := repo.MarkCompleted(repo.db, rideID)
		require.NoError(t, err)
		assert.True(t, done)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Completed", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`UPDATE rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		done, err := repo.MarkCompleted(repo.db, rideID)
		require.NoError(t, err)
		assert.False(t, done)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRideDelete(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`DELETE FROM rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(rideID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newTestRideRepo(t)
		rideID := uuid.New()

		mock.ExpectExec(`DELETE FROM rides`).
			WithArgs(rideID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(rideID), ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
