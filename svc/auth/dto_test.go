package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authgateway/pkg/validator"
	"github.com/dmitrymomot/authgateway/svc/auth"
)

func TestRegisterRequestValidate(t *testing.T) {
	t.Parallel()

	valid := auth.RegisterRequest{Email: "a@example.com", FirstName: "A", LastName: "B", Password: "12345678"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(r *auth.RegisterRequest)
		field   string
		message string
	}{
		{"missing email", func(r *auth.RegisterRequest) { r.Email = "" }, "email", "Email is required"},
		{"bad email", func(r *auth.RegisterRequest) { r.Email = "not-an-email" }, "email", "Email should be valid"},
		{"missing first name", func(r *auth.RegisterRequest) { r.FirstName = " " }, "firstName", "First name is required"},
		{"long last name", func(r *auth.RegisterRequest) { r.LastName = strings.Repeat("x", 101) }, "lastName", "Last name must be between 1 and 100 characters"},
		{"short password", func(r *auth.RegisterRequest) { r.Password = "1234567" }, "password", "Password must be at least 8 characters long"},
		{"missing password", func(r *auth.RegisterRequest) { r.Password = "" }, "password", "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid
			tt.mutate(&req)

			errs := validator.ExtractValidationErrors(req.Validate())
			require.NotNil(t, errs)
			assert.Equal(t, map[string]string{tt.field: tt.message}, errs.FieldErrors())
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	t.Parallel()

	errs := validator.ExtractValidationErrors(auth.LoginRequest{}.Validate())
	assert.Equal(t, map[string]string{
		"email":    "Email is required",
		"password": "Password is required",
	}, errs.FieldErrors())

	assert.NoError(t, auth.LoginRequest{Email: "a@example.com", Password: "x"}.Validate())
}

func TestRefreshTokenRequestValidate(t *testing.T) {
	t.Parallel()

	req := auth.RefreshTokenRequest{RefreshToken: "  "}
	req.Normalize()
	errs := validator.ExtractValidationErrors(req.Validate())
	assert.Equal(t, map[string]string{"refreshToken": "Refresh token is required"}, errs.FieldErrors())
}
