package models

import (
	"time"

	"github.com/google/uuid"
)

// Ride statuses
const (
	RideStatusScheduled  = "scheduled"
	RideStatusInProgress = "in-progress"
	RideStatusCompleted  = "completed"
	RideStatusCancelled  = "cancelled"
)

// Passenger request statuses
const (
	PassengerStatusPending   = "pending"
	PassengerStatusAccepted  = "accepted"
	PassengerStatusRejected  = "rejected"
	PassengerStatusCompleted = "completed"
)

// Ride represents a driver-posted trip offer
type Ride struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	DriverID       uuid.UUID  `json:"driverId" db:"driver_id"`
	StartLocation  string     `json:"startLocation" db:"start_location"`
	EndLocation    string     `json:"endLocation" db:"end_location"`
	Route          string     `json:"route" db:"route"`
	DepartureTime  time.Time  `json:"departureTime" db:"departure_time"`
	TotalSeats     int        `json:"totalSeats" db:"total_seats"`
	AvailableSeats int        `json:"availableSeats" db:"available_seats"`
	Status         string     `json:"status" db:"status"`
	Price          float64    `json:"price" db:"price"`
	Notes          NullString `json:"additionalNotes,omitempty" db:"notes"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`

	// Populated by joins, not stored on the rides row.
	Driver     *UserSummary `json:"driver,omitempty" db:"-"`
	Passengers []Passenger  `json:"passengers,omitempty" db:"-"`
}

// Passenger is a rider's request to join a ride, with its own sub-state
type Passenger struct {
	ID             uuid.UUID `json:"id" db:"id"`
	RideID         uuid.UUID `json:"rideId" db:"ride_id"`
	UserID         uuid.UUID `json:"userId" db:"user_id"`
	Status         string    `json:"status" db:"status"`
	PickupLocation string    `json:"pickupLocation" db:"pickup_location"`
	HasRated       bool      `json:"hasRated" db:"has_rated"`
	RequestedAt    time.Time `json:"requestedAt" db:"requested_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Populated by joins.
	User *UserSummary `json:"user,omitempty" db:"-"`
}

// UserRide is a ride annotated with the requesting user's relationship to it,
// used by the ride-history listing.
type UserRide struct {
	Ride
	IsDriver bool `json:"isDriver"`
	HasRated bool `json:"hasRated"`
}

// RideNotification is a read-time notification about pending join requests
// on one of the user's rides. Nothing is stored or pushed.
type RideNotification struct {
	ID           string    `json:"id"`
	RideID       uuid.UUID `json:"rideId"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"`
	PendingCount int       `json:"pendingCount"`
}
