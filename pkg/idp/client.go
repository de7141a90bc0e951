package idp

import "context"

// TokenSet is the subset of a token endpoint response the gateway consumes.
type TokenSet struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	ExpiresIn        int64
	RefreshExpiresIn int64
}

// User is a user record as returned by the admin API.
type User struct {
	ID            string `json:"id,omitempty"`
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	Enabled       bool   `json:"enabled"`
	EmailVerified bool   `json:"emailVerified"`
}

// Client talks to one tenant's realm. Implementations hold pooled connections
// and cached admin credentials, and must be released with Close.
type Client interface {
	// PasswordGrant exchanges user credentials for tokens.
	PasswordGrant(ctx context.Context, username, password string) (*TokenSet, error)

	// RefreshGrant exchanges a refresh token for a new token set.
	RefreshGrant(ctx context.Context, refreshToken string) (*TokenSet, error)

	// Logout revokes the session bound to refreshToken.
	Logout(ctx context.Context, refreshToken string) error

	// FindUsersByEmail searches users by exact email.
	FindUsersByEmail(ctx context.Context, email string) ([]User, error)

	// CreateUser creates an enabled user and returns its id.
	CreateUser(ctx context.Context, user User) (string, error)

	// ResetPassword sets a permanent password for the user.
	ResetPassword(ctx context.Context, userID, password string) error

	// Close releases pooled connections. Later calls fail with ErrClientClosed.
	Close() error
}
