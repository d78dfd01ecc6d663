package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/campuscruz/rideshare-backend/internal/database"
	"github.com/campuscruz/rideshare-backend/internal/models"
)

// PointsPerCompletedPassenger is the reputation award the driver earns for
// every passenger carried to completion.
const PointsPerCompletedPassenger = 5

// RideService drives the ride lifecycle: join requests, accept/reject,
// completion with point awards, and driver ratings. Every multi-write
// transition runs inside one transaction.
type RideService struct {
	db         *sqlx.DB
	rides      *database.RideRepository
	passengers *database.PassengerRepository
	ratings    *database.RatingRepository
	users      *database.UserRepository
	logger     *logrus.Logger
}

// NewRideService creates a new ride service
func NewRideService(
	db *sqlx.DB,
	rides *database.RideRepository,
	passengers *database.PassengerRepository,
	ratings *database.RatingRepository,
	users *database.UserRepository,
	logger *logrus.Logger,
) *RideService {
	return &RideService{
		db:         db,
		rides:      rides,
		passengers: passengers,
		ratings:    ratings,
		users:      users,
		logger:     logger,
	}
}

// RequestToJoin files a pending join request on a scheduled ride with free
// seats. The seat itself is only taken when the driver accepts.
func (s *RideService) RequestToJoin(rideID, userID uuid.UUID, pickupLocation string) (*models.Passenger, error) {
	ride, err := s.rides.GetByID(rideID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if ride.DriverID == userID {
		return nil, NewBusinessRuleError("you cannot join your own ride")
	}
	if ride.Status != models.RideStatusScheduled {
		return nil, NewBusinessRuleError("this ride is no longer accepting passengers")
	}
	if ride.AvailableSeats <= 0 {
		return nil, NewBusinessRuleError("no seats available on this ride")
	}

	passenger := &models.Passenger{
		RideID:         rideID,
		UserID:         userID,
		PickupLocation: pickupLocation,
	}
	if err := s.passengers.Add(passenger); err != nil {
		if errors.Is(err, database.ErrDuplicatePassenger) {
			return nil, NewBusinessRuleError("you have already requested to join this ride")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id":   rideID,
		"user_id":   userID,
		"driver_id": ride.DriverID,
	}).Info("New join request, driver notification pending")

	return passenger, nil
}

// UpdatePassengerStatus lets the driver accept or reject a pending request.
// Accepting takes a seat atomically; a request that already left the pending
// state, or a ride that ran out of seats, is rejected without side effects.
func (s *RideService) UpdatePassengerStatus(driverID, rideID, passengerUserID uuid.UUID, status string) (*models.Passenger, error) {
	if status != models.PassengerStatusAccepted && status != models.PassengerStatusRejected {
		return nil, NewBusinessRuleError("status must be accepted or rejected")
	}

	ride, err := s.rides.GetByID(rideID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, ErrNotRideDriver
	}

	if _, err := s.passengers.Get(rideID, passengerUserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrPassengerNotFound
		}
		return nil, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if status == models.PassengerStatusAccepted {
		taken, err := s.rides.DecrementSeat(tx, rideID)
		if err != nil {
			return nil, err
		}
		if !taken {
			return nil, NewBusinessRuleError("no seats available on this ride")
		}
	}

	moved, err := s.passengers.UpdateStatusFromPending(tx, rideID, passengerUserID, status)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, NewBusinessRuleError("this request has already been handled")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id": rideID,
		"user_id": passengerUserID,
		"status":  status,
	}).Info("Passenger request resolved")

	return s.passengers.Get(rideID, passengerUserID)
}

// CompleteRide finishes the ride, moves accepted passengers to completed and
// awards the driver points per completed passenger, all in one transaction.
// Returns the points earned.
func (s *RideService) CompleteRide(driverID, rideID uuid.UUID) (int, error) {
	ride, err := s.rides.GetByID(rideID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, ErrRideNotFound
		}
		return 0, err
	}
	if ride.DriverID != driverID {
		return 0, ErrNotRideDriver
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	completed, err := s.rides.MarkCompleted(tx, rideID)
	if err != nil {
		return 0, err
	}
	if !completed {
		return 0, NewBusinessRuleError("this ride cannot be completed from its current status")
	}

	carried, err := s.passengers.CompleteAccepted(tx, rideID)
	if err != nil {
		return 0, err
	}

	points := carried * PointsPerCompletedPassenger
	if points > 0 {
		if err := s.users.AddPoints(tx, driverID, points); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id":    rideID,
		"driver_id":  driverID,
		"passengers": carried,
		"points":     points,
	}).Info("Ride completed")

	return points, nil
}

// RateRide records a completed passenger's rating of the driver and
// recomputes the driver's average. Each passenger rates a ride once;
// drivers rating passengers is not supported.
func (s *RideService) RateRide(raterID, rideID uuid.UUID, score int, comment string) (float64, error) {
	if score < 1 || score > 5 {
		return 0, NewBusinessRuleError("rating must be between 1 and 5")
	}

	ride, err := s.rides.GetByID(rideID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, ErrRideNotFound
		}
		return 0, err
	}
	if ride.Status != models.RideStatusCompleted {
		return 0, NewBusinessRuleError("you can only rate a completed ride")
	}
	if ride.DriverID == raterID {
		return 0, ErrDriverRatingNotSupported
	}

	passenger, err := s.passengers.Get(rideID, raterID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, ErrNotRideParticipant
		}
		return 0, err
	}
	if passenger.Status != models.PassengerStatusCompleted {
		return 0, ErrNotRideParticipant
	}
	if passenger.HasRated {
		return 0, NewBusinessRuleError("you have already rated this ride")
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	marked, err := s.passengers.MarkRated(tx, rideID, raterID)
	if err != nil {
		return 0, err
	}
	if !marked {
		return 0, NewBusinessRuleError("you have already rated this ride")
	}

	rating := &models.Rating{
		RideID:      rideID,
		RaterID:     raterID,
		RatedUserID: ride.DriverID,
		Rating:      score,
		Comment:     models.NewNullString(comment),
	}
	if err := s.ratings.Insert(tx, rating); err != nil {
		if errors.Is(err, database.ErrDuplicateRating) {
			return 0, NewBusinessRuleError("you have already rated this ride")
		}
		return 0, err
	}

	average, err := s.ratings.RecalculateAverage(tx, ride.DriverID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return average, nil
}
