package auth

import (
	"strings"

	"github.com/dmitrymomot/authgateway/pkg/validator"
)

const (
	nameMaxLen        = 100
	passwordMinLength = 8
)

// RegisterRequest is the payload of POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// Normalize trims surrounding whitespace from identity fields.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r RegisterRequest) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email).WithMessage("Email is required"),
		validator.ValidEmail("email", r.Email).WithMessage("Email should be valid"),
		validator.Required("firstName", r.FirstName).WithMessage("First name is required"),
		validator.LenBetween("firstName", r.FirstName, 1, nameMaxLen).
			WithMessage("First name must be between 1 and 100 characters"),
		validator.Required("lastName", r.LastName).WithMessage("Last name is required"),
		validator.LenBetween("lastName", r.LastName, 1, nameMaxLen).
			WithMessage("Last name must be between 1 and 100 characters"),
		validator.Required("password", r.Password).WithMessage("Password is required"),
		validator.MinLen("password", r.Password, passwordMinLength).
			WithMessage("Password must be at least 8 characters long"),
	)
}

// LoginRequest is the payload of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r LoginRequest) Validate() error {
	return validator.Apply(
		validator.Required("email", r.Email).WithMessage("Email is required"),
		validator.ValidEmail("email", r.Email).WithMessage("Email should be valid"),
		validator.Required("password", r.Password).WithMessage("Password is required"),
	)
}

// RefreshTokenRequest is the payload of POST /refresh and POST /logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshTokenRequest) Normalize() {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

func (r RefreshTokenRequest) Validate() error {
	return validator.Apply(
		validator.Required("refreshToken", r.RefreshToken).WithMessage("Refresh token is required"),
	)
}

// TokenResponse is returned by login and refresh. Profile fields are only
// populated on login.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	Email            string `json:"email,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
}

// Meta describes the caller of an operation for auditing.
type Meta struct {
	IP        string
	UserAgent string
}
