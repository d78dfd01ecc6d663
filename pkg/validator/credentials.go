package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEmail indicates the email is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email is not a valid address
	ErrInvalidEmail = errors.New("please include a valid email")

	// ErrEmailDomainNotAllowed indicates the email domain is outside the institutional allow-list
	ErrEmailDomainNotAllowed = errors.New("email must belong to an approved institutional domain")

	// ErrPasswordTooShort indicates the password is shorter than 6 characters
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrPasswordTooWeak indicates the password lacks required character classes
	ErrPasswordTooWeak = errors.New("password must contain at least one uppercase letter, one lowercase letter, and one number")

	// ErrInvalidPhone indicates the phone number format is invalid
	ErrInvalidPhone = errors.New("invalid phone number format")
)

// phoneRegex accepts an optional leading + followed by 10-15 digits
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// CredentialValidator validates registration credentials against the
// institutional policy configured at process start.
type CredentialValidator struct {
	allowedDomains []string
}

// NewCredentialValidator creates a validator for the given email domain allow-list.
func NewCredentialValidator(allowedDomains []string) *CredentialValidator {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		domains = append(domains, strings.ToLower(strings.TrimSpace(d)))
	}
	return &CredentialValidator{allowedDomains: domains}
}

// ValidateEmail validates the address shape and the institutional domain
// allow-list. Returns the normalized (lowercased, trimmed) address.
func (v *CredentialValidator) ValidateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmptyEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	for _, allowed := range v.allowedDomains {
		if domain == allowed {
			return email, nil
		}
	}

	return "", fmt.Errorf("%w (allowed: %s)", ErrEmailDomainNotAllowed, strings.Join(v.allowedDomains, ", "))
}

// ValidatePassword enforces the minimum password policy: at least 6
// characters with one uppercase letter, one lowercase letter, and one digit.
func (v *CredentialValidator) ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}

// ValidatePhone validates an optional phone number. Empty input is accepted;
// a non-empty value must match the expected format. Returns the trimmed value.
func (v *CredentialValidator) ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	if !phoneRegex.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}
