package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/validator"
)

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"alice@example.com", "a.b+tag@sub.example.org", " bob@example.io "}
	invalid := []string{"", "   ", "alice", "alice@", "@example.com", "alice@localhost", "alice@example..com",
		"alice@.example.com", "Alice <alice@example.com>"}

	for _, v := range valid {
		assert.True(t, validator.ValidEmail("email", v).Check(), v)
	}
	for _, v := range invalid {
		assert.False(t, validator.ValidEmail("email", v).Check(), v)
	}
}

func TestStringRules(t *testing.T) {
	t.Parallel()

	assert.False(t, validator.Required("f", " \t").Check())
	assert.True(t, validator.Required("f", "x").Check())

	assert.True(t, validator.MinLen("f", "12345678", 8).Check())
	assert.False(t, validator.MinLen("f", "1234567", 8).Check())
	assert.Equal(t, "must be at least 8 characters long", validator.MinLen("f", "", 8).Error.Message)

	// Characters, not bytes.
	assert.True(t, validator.LenBetween("f", strings.Repeat("é", 100), 1, 100).Check())
	assert.False(t, validator.LenBetween("f", strings.Repeat("é", 101), 1, 100).Check())

	assert.True(t, validator.LenBetween("f", "Jo", 1, 100).Check())
	assert.False(t, validator.LenBetween("f", "", 1, 100).Check())
	assert.Equal(t, "must be between 1 and 100 characters", validator.LenBetween("f", "", 1, 100).Error.Message)
}

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("no errors", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "alice@example.com"),
			validator.ValidEmail("email", "alice@example.com"),
		)
		assert.NoError(t, err)
	})

	t.Run("first failure per field wins", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("email", "").WithMessage("Email is required"),
			validator.ValidEmail("email", "").WithMessage("Email should be valid"),
			validator.MinLen("password", "short", 8).WithMessage("Password must be at least 8 characters long"),
		)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))
		assert.ErrorIs(t, err, validator.ErrValidationFailed)

		errs := validator.ExtractValidationErrors(err)
		assert.Len(t, errs, 2)
		assert.Equal(t, []string{"email", "password"}, errs.Fields())
		assert.Equal(t, map[string]string{
			"email":    "Email is required",
			"password": "Password must be at least 8 characters long",
		}, errs.FieldErrors())
		assert.Equal(t, []string{"Email is required"}, errs.Get("email"))
		assert.Contains(t, err.Error(), "email: Email is required")
	})

	t.Run("wrapped errors are extracted", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", validator.Apply(validator.Required("lastName", "")))
		assert.True(t, validator.ExtractValidationErrors(err).Has("lastName"))
	})

	t.Run("non validation errors", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))
		assert.False(t, validator.IsValidationError(errors.New("boom")))
		assert.Equal(t, "validation failed", validator.ValidationErrors{}.Error())
	})
}
