package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/authgateway/pkg/audit"
	"github.com/dmitrymomot/authgateway/pkg/idp"
	"github.com/dmitrymomot/authgateway/pkg/jwt"
	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
)

// ClientProvider hands out the identity-provider client of a tenant.
// *idp.ClientCache satisfies it.
type ClientProvider interface {
	GetOrCreate(ctx context.Context, t *tenant.Tenant) (idp.Client, error)
}

// Service implements the account flows of the gateway on top of each
// tenant's identity provider. Every outcome is reported to the audit log.
type Service struct {
	clients ClientProvider
	audit   audit.Logger
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// NewService creates the auth service.
func NewService(clients ClientProvider, auditLog audit.Logger, opts ...Option) *Service {
	if clients == nil {
		panic("auth: client provider cannot be nil")
	}
	if auditLog == nil {
		panic("auth: audit logger cannot be nil")
	}

	s := &Service{
		clients: clients,
		audit:   auditLog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))
	return s
}

// Register creates an enabled, verified user with a permanent password.
// Returns ErrUserAlreadyExists when the email is taken.
func (s *Service) Register(ctx context.Context, t *tenant.Tenant, req RegisterRequest, meta Meta) error {
	err := s.register(ctx, t, req)
	s.record(ctx, t, audit.ActionUserRegister, req.Email, meta, err,
		audit.WithMetadata("first_name", req.FirstName),
		audit.WithMetadata("last_name", req.LastName),
	)
	return err
}

func (s *Service) register(ctx context.Context, t *tenant.Tenant, req RegisterRequest) error {
	client, err := s.client(ctx, t)
	if err != nil {
		return err
	}

	if _, err := lookupUser(ctx, client, req.Email); err == nil {
		return fmt.Errorf("%w: %s", ErrUserAlreadyExists, req.Email)
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	userID, err := client.CreateUser(ctx, idp.User{
		Username:      req.Email,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Enabled:       true,
		EmailVerified: true,
	})
	if err != nil {
		return err
	}

	if err := client.ResetPassword(ctx, userID, req.Password); err != nil {
		return fmt.Errorf("set password for user %s: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.TenantKey(t.Key),
		slog.String("user_id", userID),
	)
	return nil
}

// Login exchanges credentials for tokens and attaches the user's display claims.
func (s *Service) Login(ctx context.Context, t *tenant.Tenant, req LoginRequest, meta Meta) (*TokenResponse, error) {
	resp, err := s.login(ctx, t, req)
	s.record(ctx, t, audit.ActionUserLogin, req.Email, meta, err,
		audit.WithMetadata("grant_type", "password"),
	)
	return resp, err
}

func (s *Service) login(ctx context.Context, t *tenant.Tenant, req LoginRequest) (*TokenResponse, error) {
	client, err := s.client(ctx, t)
	if err != nil {
		return nil, err
	}

	tokens, err := client.PasswordGrant(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	segments, err := jwt.Split(tokens.AccessToken)
	if err != nil {
		return nil, errors.Join(ErrInvalidTokenFormat, err)
	}

	p, err := decodeProfile(segments, req.Email)
	if err != nil {
		s.logger.WarnContext(ctx, "access token claims unreadable, using request email",
			logger.TenantKey(t.Key),
			logger.Error(err),
		)
	}

	resp := tokenResponse(tokens)
	resp.Email = p.Email
	resp.FirstName = p.FirstName
	resp.LastName = p.LastName
	return resp, nil
}

// Refresh exchanges a refresh token for a new token set.
func (s *Service) Refresh(ctx context.Context, t *tenant.Tenant, refreshToken string, meta Meta) (*TokenResponse, error) {
	resp, err := s.refresh(ctx, t, refreshToken)
	s.record(ctx, t, audit.ActionTokenRefresh, "", meta, err,
		audit.WithMetadata("grant_type", "refresh_token"),
	)
	return resp, err
}

func (s *Service) refresh(ctx context.Context, t *tenant.Tenant, refreshToken string) (*TokenResponse, error) {
	client, err := s.client(ctx, t)
	if err != nil {
		return nil, err
	}

	tokens, err := client.RefreshGrant(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return tokenResponse(tokens), nil
}

// Logout revokes the session bound to refreshToken. It always appears to
// succeed: provider failures are audited and logged, never returned.
func (s *Service) Logout(ctx context.Context, t *tenant.Tenant, refreshToken string, meta Meta) {
	err := s.logout(ctx, t, refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "logout failed",
			logger.TenantKey(tenantKey(t)),
			logger.Error(err),
		)
	}
	s.record(ctx, t, audit.ActionUserLogout, "", meta, err)
}

func (s *Service) logout(ctx context.Context, t *tenant.Tenant, refreshToken string) error {
	client, err := s.client(ctx, t)
	if err != nil {
		return err
	}
	return client.Logout(ctx, refreshToken)
}

// LookupUser returns the user registered under email.
// Returns ErrUserNotFound if there is none.
func (s *Service) LookupUser(ctx context.Context, t *tenant.Tenant, email string) (*idp.User, error) {
	client, err := s.client(ctx, t)
	if err != nil {
		return nil, err
	}
	return lookupUser(ctx, client, email)
}

func lookupUser(ctx context.Context, client idp.Client, email string) (*idp.User, error) {
	users, err := client.FindUsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return &users[0], nil
}

func (s *Service) client(ctx context.Context, t *tenant.Tenant) (idp.Client, error) {
	if t == nil {
		return nil, ErrNoTenant
	}
	return s.clients.GetOrCreate(ctx, t)
}

// record writes the audit event for an operation. Audit failures never
// change the operation's outcome. Every event carries the tenant's realm.
func (s *Service) record(ctx context.Context, t *tenant.Tenant, action audit.Action, email string, meta Meta, opErr error, extra ...audit.EventOption) {
	key := tenantKey(t)
	if key == "" {
		s.logger.WarnContext(ctx, "skipping audit event without tenant",
			logger.Action(string(action)),
			logger.Error(opErr),
		)
		return
	}

	opts := []audit.EventOption{
		audit.WithTenant(key),
		audit.WithClient(meta.IP, meta.UserAgent),
		audit.WithMetadata("realm", t.RealmName),
	}
	if email != "" {
		opts = append(opts, audit.WithUser(email))
	}
	opts = append(opts, extra...)

	var err error
	if opErr != nil {
		err = s.audit.LogError(ctx, action, opErr, opts...)
	} else {
		err = s.audit.Log(ctx, action, opts...)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record audit event",
			logger.Action(string(action)),
			logger.TenantKey(key),
			logger.Error(err),
		)
	}
}

func tokenResponse(tokens *idp.TokenSet) *TokenResponse {
	return &TokenResponse{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		TokenType:        tokens.TokenType,
		ExpiresIn:        tokens.ExpiresIn,
		RefreshExpiresIn: tokens.RefreshExpiresIn,
	}
}

func tenantKey(t *tenant.Tenant) string {
	if t == nil {
		return ""
	}
	return t.Key
}
