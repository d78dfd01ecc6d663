package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/middleware"
	"github.com/campuscruz/rideshare-backend/internal/models"
	"github.com/campuscruz/rideshare-backend/internal/services"
)

var rideColumns = []string{
	"id", "driver_id", "start_location", "end_location", "route",
	"departure_time", "total_seats", "available_seats", "status",
	"price", "notes", "created_at", "updated_at",
}

// fakeAuth injects an authenticated user without a real session
func fakeAuth(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	}
}

func setupRideHandlerTest(t *testing.T, user *models.User) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	rides := database.NewRideRepository(db)
	passengers := database.NewPassengerRepository(db)
	rideService := services.NewRideService(
		db, rides, passengers,
		database.NewRatingRepository(db),
		database.NewUserRepository(db),
		logger,
	)
	handler := NewRideHandler(rides, passengers, rideService, logger)

	router := gin.New()
	authed := router.Group("", fakeAuth(user))
	authed.POST("/api/rides", handler.Create)
	authed.GET("/api/rides", handler.List)
	authed.GET("/api/rides/:id", handler.Get)
	authed.POST("/api/rides/:id/join", handler.Join)
	authed.PUT("/api/rides/:id/complete", handler.Complete)

	return router, mock
}

func testStudent() *models.User {
	return &models.User{
		ID:     uuid.New(),
		Name:   "Asha Rawat",
		Email:  "asha@geu.ac.in",
		Role:   models.RoleStudent,
		Status: models.UserStatusActive,
	}
}

func TestCreateRide(t *testing.T) {
	user := testStudent()
	departure := time.Now().Add(2 * time.Hour).Format(time.RFC3339)

	t.Run("Success", func(t *testing.T) {
		router, mock := setupRideHandlerTest(t, user)

		mock.ExpectExec(`INSERT INTO rides`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := postJSON(router, "/api/rides", gin.H{
			"startLocation": "Campus Gate",
			"endLocation":   "City Center",
			"departureTime": departure,
			"totalSeats":    3,
			"price":         50,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"availableSeats":3`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Past Departure", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, user)

		w := postJSON(router, "/api/rides", gin.H{
			"startLocation": "Campus Gate",
			"endLocation":   "City Center",
			"departureTime": time.Now().Add(-time.Hour).Format(time.RFC3339),
			"totalSeats":    3,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "future")
	})

	t.Run("Seats Out Of Range", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, user)

		for _, seats := range []int{-1, 11} {
			w := postJSON(router, "/api/rides", gin.H{
				"startLocation": "Campus Gate",
				"endLocation":   "City Center",
				"departureTime": departure,
				"totalSeats":    seats,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code, "seats: %d", seats)
		}
	})

	t.Run("Missing Fields", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, user)

		w := postJSON(router, "/api/rides", gin.H{"startLocation": "Campus Gate"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListRides(t *testing.T) {
	t.Run("Bad Date Filter", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, testStudent())

		req := httptest.NewRequest("GET", "/api/rides?date=not-a-date", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRide(t *testing.T) {
	t.Run("Invalid ID", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, testStudent())

		req := httptest.NewRequest("GET", "/api/rides/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid ride ID")
	})

	t.Run("Not Found", func(t *testing.T) {
		router, mock := setupRideHandlerTest(t, testStudent())
		rideID := uuid.New()

		mock.ExpectQuery(`FROM rides r`).
			WithArgs(rideID).
			WillReturnRows(sqlmock.NewRows(rideColumns))

		req := httptest.NewRequest("GET", "/api/rides/"+rideID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJoinRide(t *testing.T) {
	t.Run("Own Ride Rejected", func(t *testing.T) {
		user := testStudent()
		router, mock := setupRideHandlerTest(t, user)
		rideID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`FROM rides r`).
			WithArgs(rideID).
			WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(
				rideID, user.ID, "Campus Gate", "City Center", "",
				now.Add(time.Hour), 3, 3, models.RideStatusScheduled,
				50.0, nil, now, now,
			))

		w := postJSON(router, fmt.Sprintf("/api/rides/%s/join", rideID), gin.H{
			"pickupLocation": "Main Gate",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cannot join your own ride")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Pickup Location", func(t *testing.T) {
		router, _ := setupRideHandlerTest(t, testStudent())

		w := postJSON(router, fmt.Sprintf("/api/rides/%s/join", uuid.New()), gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCompleteRide_NotDriver(t *testing.T) {
	router, mock := setupRideHandlerTest(t, testStudent())
	rideID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM rides r`).
		WithArgs(rideID).
		WillReturnRows(sqlmock.NewRows(rideColumns).AddRow(
			rideID, uuid.New(), "Campus Gate", "City Center", "",
			now.Add(time.Hour), 3, 3, models.RideStatusScheduled,
			50.0, nil, now, now,
		))

	req := httptest.NewRequest("PUT", fmt.Sprintf("/api/rides/%s/complete", rideID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
