package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User account statuses
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a registered account
type User struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	Name                 string     `json:"name" db:"name"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	CollegeID            string     `json:"collegeID" db:"college_id"`
	PhoneNumber          string     `json:"phoneNumber" db:"phone_number"`
	ProfilePicture       string     `json:"profilePicture" db:"profile_picture"`
	Role                 string     `json:"role" db:"role"`
	Status               string     `json:"status" db:"status"`
	Points               int        `json:"points" db:"points"`
	AverageRating        float64    `json:"averageRating" db:"average_rating"`
	ResetPasswordToken   NullString `json:"-" db:"reset_password_token"`
	ResetPasswordExpires NullTime   `json:"-" db:"reset_password_expires"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserSummary is the subset of user fields embedded in ride responses
type UserSummary struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"`
	AverageRating  float64   `json:"averageRating" db:"average_rating"`
}

// Rating is a single piece of passenger feedback attached to a driver
type Rating struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	RideID      uuid.UUID  `json:"rideId" db:"ride_id"`
	RatedUserID uuid.UUID  `json:"ratedUserId" db:"rated_user_id"`
	RaterID     uuid.UUID  `json:"raterId" db:"rater_id"`
	Rating      int        `json:"rating" db:"rating"`
	Comment     NullString `json:"comment,omitempty" db:"comment"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// LoginAttempt is an audit record of an authentication attempt
type LoginAttempt struct {
	ID         int64      `json:"id" db:"id"`
	Identifier string     `json:"identifier" db:"identifier"`
	IPAddress  NullString `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"userAgent,omitempty" db:"user_agent"`
	DeviceType NullString `json:"deviceType,omitempty" db:"device_type"`
	Successful bool       `json:"successful" db:"successful"`
	Reason     NullString `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
