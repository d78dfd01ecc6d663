package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *CredentialValidator {
	return NewCredentialValidator([]string{"geu.ac.in", "gehu.ac.in"})
}

func TestValidateEmail(t *testing.T) {
	v := newTestValidator()

	t.Run("Allowed Domain", func(t *testing.T) {
		email, err := v.ValidateEmail("student@geu.ac.in")
		require.NoError(t, err)
		assert.Equal(t, "student@geu.ac.in", email)
	})

	t.Run("Normalizes Case And Whitespace", func(t *testing.T) {
		email, err := v.ValidateEmail("  Student@GEHU.AC.IN  ")
		require.NoError(t, err)
		assert.Equal(t, "student@gehu.ac.in", email)
	})

	t.Run("Domain Not Allowed", func(t *testing.T) {
		_, err := v.ValidateEmail("student@gmail.com")
		assert.ErrorIs(t, err, ErrEmailDomainNotAllowed)
	})

	t.Run("Subdomain Not Allowed", func(t *testing.T) {
		_, err := v.ValidateEmail("student@mail.geu.ac.in")
		assert.ErrorIs(t, err, ErrEmailDomainNotAllowed)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := v.ValidateEmail("")
		assert.ErrorIs(t, err, ErrEmptyEmail)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, input := range []string{"not-an-email", "@geu.ac.in", "a b@geu.ac.in"} {
			_, err := v.ValidateEmail(input)
			assert.ErrorIs(t, err, ErrInvalidEmail, "input: %s", input)
		}
	})
}

func TestValidatePassword(t *testing.T) {
	v := newTestValidator()

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, v.ValidatePassword("Secret1"))
	})

	t.Run("Too Short", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidatePassword("Ab1"), ErrPasswordTooShort)
	})

	t.Run("Missing Character Classes", func(t *testing.T) {
		for _, input := range []string{"alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
			assert.ErrorIs(t, v.ValidatePassword(input), ErrPasswordTooWeak, "input: %s", input)
		}
	})
}

func TestValidatePhone(t *testing.T) {
	v := newTestValidator()

	t.Run("Empty Is Optional", func(t *testing.T) {
		phone, err := v.ValidatePhone("")
		require.NoError(t, err)
		assert.Empty(t, phone)
	})

	t.Run("Valid", func(t *testing.T) {
		for _, input := range []string{"9876543210", "+919876543210"} {
			phone, err := v.ValidatePhone(input)
			require.NoError(t, err)
			assert.Equal(t, input, phone)
		}
	})

	t.Run("Trims Whitespace", func(t *testing.T) {
		phone, err := v.ValidatePhone(" 9876543210 ")
		require.NoError(t, err)
		assert.Equal(t, "9876543210", phone)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, input := range []string{"12345", "phone-number", "98765432101234567"} {
			_, err := v.ValidatePhone(input)
			assert.ErrorIs(t, err, ErrInvalidPhone, "input: %s", input)
		}
	})
}
