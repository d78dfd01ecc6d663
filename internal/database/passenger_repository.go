package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuscruz/rideshare-backend/internal/models"
)

// PassengerRepository handles ride passenger database operations
type PassengerRepository struct {
	db *sqlx.DB
}

// NewPassengerRepository creates a new passenger repository
func NewPassengerRepository(db *sqlx.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

// Add inserts a pending join request. A second request by the same user on
// the same ride violates the unique constraint and maps to
// ErrDuplicatePassenger.
func (r *PassengerRepository) Add(passenger *models.Passenger) error {
	if passenger.ID == uuid.Nil {
		passenger.ID = uuid.New()
	}
	now := time.Now()
	passenger.RequestedAt = now
	passenger.UpdatedAt = now
	if passenger.Status == "" {
		passenger.Status = models.PassengerStatusPending
	}

	query := `
		INSERT INTO ride_passengers (
			id, ride_id, user_id, status, pickup_location, has_rated, requested_at, updated_at
		) VALUES ($1, $2, $3, $4::passenger_status, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		passenger.ID,
		passenger.RideID,
		passenger.UserID,
		passenger.Status,
		passenger.PickupLocation,
		passenger.HasRated,
		passenger.RequestedAt,
		passenger.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to add passenger: %w", err)
	}

	return nil
}

// Get fetches a user's entry on a ride
func (r *PassengerRepository) Get(rideID, userID uuid.UUID) (*models.Passenger, error) {
	var passenger models.Passenger
	query := `
		SELECT id, ride_id, user_id, status, pickup_location, has_rated, requested_at, updated_at
		FROM ride_passengers
		WHERE ride_id = $1 AND user_id = $2
	`

	if err := r.db.Get(&passenger, query, rideID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get passenger: %w", err)
	}

	return &passenger, nil
}

// UpdateStatusFromPending moves a pending entry to accepted or rejected.
// The state guard makes the transition single-shot: returns false when the
// entry was not pending anymore.
func (r *PassengerRepository) UpdateStatusFromPending(ext sqlx.Ext, rideID, userID uuid.UUID, status string) (bool, error) {
	result, err := ext.Exec(`
		UPDATE ride_passengers
		SET status = $1::passenger_status, updated_at = NOW()
		WHERE ride_id = $2 AND user_id = $3 AND status = 'pending'
	`, status, rideID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update passenger status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// CompleteAccepted moves every accepted entry on the ride to completed and
// returns how many were moved, which drives the driver's point award.
func (r *PassengerRepository) CompleteAccepted(ext sqlx.Ext, rideID uuid.UUID) (int, error) {
	result, err := ext.Exec(`
		UPDATE ride_passengers
		SET status = 'completed', updated_at = NOW()
		WHERE ride_id = $1 AND status = 'accepted'
	`, rideID)
	if err != nil {
		return 0, fmt.Errorf("failed to complete passengers: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

// MarkRated records that the passenger submitted their rating for the ride.
// Returns false when the entry is not completed or was already rated.
func (r *PassengerRepository) MarkRated(ext sqlx.Ext, rideID, userID uuid.UUID) (bool, error) {
	result, err := ext.Exec(`
		UPDATE ride_passengers
		SET has_rated = TRUE, updated_at = NOW()
		WHERE ride_id = $1 AND user_id = $2 AND status = 'completed' AND has_rated = FALSE
	`, rideID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to mark passenger rated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// passengerRow is the scan target for passenger queries joined with the
// requesting user's summary.
type passengerRow struct {
	models.Passenger
	UserSummary models.UserSummary `db:"user"`
}

// ListByRide returns every entry on the ride with the requesting users'
// public fields, oldest request first.
func (r *PassengerRepository) ListByRide(rideID uuid.UUID) ([]models.Passenger, error) {
	query := `
		SELECT p.id, p.ride_id, p.user_id, p.status, p.pickup_location,
		       p.has_rated, p.requested_at, p.updated_at,
		       u.id AS "user.id", u.name AS "user.name", u.email AS "user.email",
		       u.profile_picture AS "user.profile_picture", u.average_rating AS "user.average_rating"
		FROM ride_passengers p
		JOIN users u ON u.id = p.user_id
		WHERE p.ride_id = $1
		ORDER BY p.requested_at ASC
	`

	rows := []passengerRow{}
	if err := r.db.Select(&rows, query, rideID); err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}

	passengers := make([]models.Passenger, 0, len(rows))
	for i := range rows {
		passenger := rows[i].Passenger
		summary := rows[i].UserSummary
		passenger.User = &summary
		passengers = append(passengers, passenger)
	}

	return passengers, nil
}
