package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail indicates the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicatePhone indicates the phone number is already registered
	ErrDuplicatePhone = errors.New("phone number already registered")

	// ErrDuplicatePassenger indicates the user already has an entry on the ride
	ErrDuplicatePassenger = errors.New("user already requested to join this ride")

	// ErrDuplicateRating indicates the rater has already rated this ride
	ErrDuplicateRating = errors.New("ride already rated by this user")
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// mapUniqueViolation translates a unique constraint violation into the
// matching sentinel error based on the violated constraint. Other errors
// pass through unchanged.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case "users_email_key":
		return ErrDuplicateEmail
	case "users_phone_number_key":
		return ErrDuplicatePhone
	case "ride_passengers_ride_user_key":
		return ErrDuplicatePassenger
	case "ratings_ride_rater_key":
		return ErrDuplicateRating
	}

	return err
}
