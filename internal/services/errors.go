package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses.
var (
	ErrRideNotFound             = errors.New("ride not found")
	ErrPassengerNotFound        = errors.New("passenger not found")
	ErrNotRideDriver            = errors.New("only the ride driver can perform this action")
	ErrNotRideParticipant       = errors.New("only a passenger who completed this ride can rate it")
	ErrDriverRatingNotSupported = errors.New("rating passengers is not supported")
)

// BusinessRuleError reports a request that is well-formed but violates a
// lifecycle rule, such as joining a full ride or accepting a request twice.
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

// NewBusinessRuleError creates a business rule violation error
func NewBusinessRuleError(message string) *BusinessRuleError {
	return &BusinessRuleError{Message: message}
}

// IsBusinessRuleError reports whether err is a business rule violation
func IsBusinessRuleError(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}
