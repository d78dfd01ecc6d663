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

// rideColumns is the aliased column list shared by ride queries.
const rideColumns = `
	r.id, r.driver_id, r.start_location, r.end_location, r.route,
	r.departure_time, r.total_seats, r.available_seats, r.status,
	r.price, r.notes, r.created_at, r.updated_at
`

// driverSummaryColumns joins the driver's public fields onto a ride row.
const driverSummaryColumns = `
	u.id AS "driver.id", u.name AS "driver.name", u.email AS "driver.email",
	u.profile_picture AS "driver.profile_picture", u.average_rating AS "driver.average_rating"
`

// rideRow is the scan target for ride queries joined with the driver summary.
type rideRow struct {
	models.Ride
	DriverSummary models.UserSummary `db:"driver"`
}

func (row *rideRow) toRide() models.Ride {
	ride := row.Ride
	summary := row.DriverSummary
	ride.Driver = &summary
	return ride
}

func toRides(rows []rideRow) []models.Ride {
	rides := make([]models.Ride, 0, len(rows))
	for i := range rows {
		rides = append(rides, rows[i].toRide())
	}
	return rides
}

// RideListFilter holds the optional filters for the admin ride listing.
type RideListFilter struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// PendingRequestSummary aggregates the pending join requests on one ride,
// used to compute driver notifications on read.
type PendingRequestSummary struct {
	RideID         uuid.UUID `db:"ride_id"`
	StartLocation  string    `db:"start_location"`
	EndLocation    string    `db:"end_location"`
	DepartureTime  time.Time `db:"departure_time"`
	PendingCount   int       `db:"pending_count"`
	FirstRequested time.Time `db:"first_requested"`
}

// RideRepository handles ride database operations
type RideRepository struct {
	db *sqlx.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db *sqlx.DB) *RideRepository {
	return &RideRepository{db: db}
}

// Create inserts a new ride with available_seats initialized to total_seats
func (r *RideRepository) Create(ride *models.Ride) error {
	if ride.ID == uuid.Nil {
		ride.ID = uuid.New()
	}
	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now
	if ride.Status == "" {
		ride.Status = models.RideStatusScheduled
	}
	ride.AvailableSeats = ride.TotalSeats

	query := `
		INSERT INTO rides (
			id, driver_id, start_location, end_location, route, departure_time,
			total_seats, available_seats, status, price, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::ride_status, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(
		query,
		ride.ID,
		ride.DriverID,
		ride.StartLocation,
		ride.EndLocation,
		ride.Route,
		ride.DepartureTime,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.Status,
		ride.Price,
		ride.Notes,
		ride.CreatedAt,
		ride.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

// GetByID fetches a ride row without joined relations
func (r *RideRepository) GetByID(id uuid.UUID) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT ` + rideColumns + ` FROM rides r WHERE r.id = $1`

	if err := r.db.Get(&ride, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &ride, nil
}

// GetWithDriver fetches a ride row joined with the driver summary
func (r *RideRepository) GetWithDriver(id uuid.UUID) (*models.Ride, error) {
	var row rideRow
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE r.id = $1
	`

	if err := r.db.Get(&row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride with driver: %w", err)
	}

	ride := row.toRide()
	return &ride, nil
}

// ListAvailable returns scheduled rides with free seats, soonest departure
// first. Location filters are case-insensitive substring matches; the date
// filter covers the full calendar day in the server's timezone.
func (r *RideRepository) ListAvailable(startLocation, endLocation string, date *time.Time) ([]models.Ride, error) {
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE r.status = 'scheduled'
		  AND r.available_seats > 0
		  AND ($1 = '' OR r.start_location ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR r.end_location ILIKE '%' || $2 || '%')
	`
	args := []interface{}{startLocation, endLocation}

	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		query += ` AND r.departure_time >= $3 AND r.departure_time < $4`
		args = append(args, dayStart, dayEnd)
	}

	query += ` ORDER BY r.departure_time ASC`

	rows := []rideRow{}
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list available rides: %w", err)
	}

	return toRides(rows), nil
}

// ListByDriver returns all rides owned by the driver, latest departure first
func (r *RideRepository) ListByDriver(driverID uuid.UUID) ([]models.Ride, error) {
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE r.driver_id = $1
		ORDER BY r.departure_time DESC
	`

	rows := []rideRow{}
	if err := r.db.Select(&rows, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to list rides by driver: %w", err)
	}

	return toRides(rows), nil
}

// passengerRideRow additionally carries the requesting user's own entry state.
type passengerRideRow struct {
	rideRow
	PassengerStatus string `db:"passenger_status"`
	HasRated        bool   `db:"has_rated"`
}

// ListByPassenger returns rides the user has requested to join, in any
// sub-state, latest departure first, annotated with the user's entry state.
func (r *RideRepository) ListByPassenger(userID uuid.UUID) ([]models.UserRide, error) {
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `,
		       p.status AS passenger_status, p.has_rated
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		JOIN ride_passengers p ON p.ride_id = r.id
		WHERE p.user_id = $1
		ORDER BY r.departure_time DESC
	`

	rows := []passengerRideRow{}
	if err := r.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list rides by passenger: %w", err)
	}

	rides := make([]models.UserRide, 0, len(rows))
	for i := range rows {
		rides = append(rides, models.UserRide{
			Ride:     rows[i].toRide(),
			IsDriver: false,
			HasRated: rows[i].HasRated,
		})
	}

	return rides, nil
}

// CountByDriver returns the number of rides the user has offered
func (r *RideRepository) CountByDriver(driverID uuid.UUID) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM rides WHERE driver_id = $1`, driverID); err != nil {
		return 0, fmt.Errorf("failed to count rides by driver: %w", err)
	}
	return count, nil
}

// CountJoined returns the number of rides the user was accepted onto
func (r *RideRepository) CountJoined(userID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM ride_passengers
		WHERE user_id = $1 AND status IN ('accepted', 'completed')
	`
	if err := r.db.Get(&count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count joined rides: %w", err)
	}
	return count, nil
}

// PendingRequests aggregates pending join requests over the driver's
// non-cancelled rides, one row per ride with requests.
func (r *RideRepository) PendingRequests(driverID uuid.UUID) ([]PendingRequestSummary, error) {
	query := `
		SELECT r.id AS ride_id, r.start_location, r.end_location, r.departure_time,
		       COUNT(p.id) AS pending_count, MIN(p.requested_at) AS first_requested
		FROM rides r
		JOIN ride_passengers p ON p.ride_id = r.id AND p.status = 'pending'
		WHERE r.driver_id = $1 AND r.status <> 'cancelled'
		GROUP BY r.id
		ORDER BY r.departure_time ASC
	`

	summaries := []PendingRequestSummary{}
	if err := r.db.Select(&summaries, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to aggregate pending requests: %w", err)
	}

	return summaries, nil
}

// DecrementSeat atomically takes one seat from a scheduled ride. Returns
// false when no seat was available (or the ride left the scheduled state),
// so two concurrent acceptances cannot drive the counter negative.
func (r *RideRepository) DecrementSeat(ext sqlx.Ext, rideID uuid.UUID) (bool, error) {
	result, err := ext.Exec(`
		UPDATE rides
		SET available_seats = available_seats - 1, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled' AND available_seats > 0
	`, rideID)
	if err != nil {
		return false, fmt.Errorf("failed to decrement seat: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// MarkCompleted transitions a ride to completed. The guard on the source
// states makes a second completion a no-op reported as false, which the
// caller rejects instead of double-awarding points.
func (r *RideRepository) MarkCompleted(ext sqlx.Ext, rideID uuid.UUID) (bool, error) {
	result, err := ext.Exec(`
		UPDATE rides
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status IN ('scheduled', 'in-progress')
	`, rideID)
	if err != nil {
		return false, fmt.Errorf("failed to complete ride: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// List returns a page of rides for the admin listing, latest departure first
func (r *RideRepository) List(filter RideListFilter, limit, offset int) ([]models.Ride, error) {
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		WHERE ($1 = '' OR r.status = $1::ride_status)
	`
	args := []interface{}{filter.Status}
	idx := 2

	if filter.StartDate != nil && filter.EndDate != nil {
		query += fmt.Sprintf(` AND r.departure_time >= $%d AND r.departure_time <= $%d`, idx, idx+1)
		args = append(args, *filter.StartDate, *filter.EndDate)
		idx += 2
	}

	query += fmt.Sprintf(` ORDER BY r.departure_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows := []rideRow{}
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	return toRides(rows), nil
}

// Count returns the number of rides matching the admin listing filter
func (r *RideRepository) Count(filter RideListFilter) (int, error) {
	query := `SELECT COUNT(*) FROM rides r WHERE ($1 = '' OR r.status = $1::ride_status)`
	args := []interface{}{filter.Status}

	if filter.StartDate != nil && filter.EndDate != nil {
		query += ` AND r.departure_time >= $2 AND r.departure_time <= $3`
		args = append(args, *filter.StartDate, *filter.EndDate)
	}

	var count int
	if err := r.db.Get(&count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}

	return count, nil
}

// CountAll returns the total number of rides
func (r *RideRepository) CountAll() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM rides`); err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of rides in the given state
func (r *RideRepository) CountByStatus(status string) (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM rides WHERE status = $1::ride_status`, status); err != nil {
		return 0, fmt.Errorf("failed to count rides by status: %w", err)
	}
	return count, nil
}

// Recent returns the most recently created rides with driver summaries
func (r *RideRepository) Recent(limit int) ([]models.Ride, error) {
	query := `
		SELECT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		ORDER BY r.created_at DESC
		LIMIT $1
	`

	rows := []rideRow{}
	if err := r.db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent rides: %w", err)
	}

	return toRides(rows), nil
}

// Delete hard-deletes a ride; passenger entries and ratings cascade
func (r *RideRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListByUser returns rides involving the user as driver or passenger for the
// admin user-detail view, latest departure first.
func (r *RideRepository) ListByUser(userID uuid.UUID) ([]models.Ride, error) {
	query := `
		SELECT DISTINCT ` + rideColumns + `, ` + driverSummaryColumns + `
		FROM rides r
		JOIN users u ON u.id = r.driver_id
		LEFT JOIN ride_passengers p ON p.ride_id = r.id
		WHERE r.driver_id = $1 OR p.user_id = $1
		ORDER BY r.departure_time DESC
	`

	rows := []rideRow{}
	if err := r.db.Select(&rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list rides by user: %w", err)
	}

	return toRides(rows), nil
}
