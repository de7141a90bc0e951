package gateway

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/authgateway/handler"
	"github.com/dmitrymomot/authgateway/pkg/clientip"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
	"github.com/dmitrymomot/authgateway/svc/auth"
)

// AuthService is the account API the gateway exposes. *auth.Service satisfies it.
type AuthService interface {
	Register(ctx context.Context, t *tenant.Tenant, req auth.RegisterRequest, meta auth.Meta) error
	Login(ctx context.Context, t *tenant.Tenant, req auth.LoginRequest, meta auth.Meta) (*auth.TokenResponse, error)
	Refresh(ctx context.Context, t *tenant.Tenant, refreshToken string, meta auth.Meta) (*auth.TokenResponse, error)
	Logout(ctx context.Context, t *tenant.Tenant, refreshToken string, meta auth.Meta)
}

type authHandlers struct {
	svc AuthService
}

func (h *authHandlers) register(ctx handler.Context, req auth.RegisterRequest) handler.Response {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return handler.Error(Translate(tenant.ErrNoTenantInContext))
	}
	if err := h.svc.Register(ctx, t, req, requestMeta(ctx.Request())); err != nil {
		return handler.Fail(err)
	}
	return handler.Success("User registered successfully", nil, handler.WithStatus(http.StatusCreated))
}

func (h *authHandlers) login(ctx handler.Context, req auth.LoginRequest) handler.Response {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return handler.Error(Translate(tenant.ErrNoTenantInContext))
	}
	resp, err := h.svc.Login(ctx, t, req, requestMeta(ctx.Request()))
	if err != nil {
		return handler.Fail(err)
	}
	return handler.Success("Login successful", resp)
}

func (h *authHandlers) refresh(ctx handler.Context, req auth.RefreshTokenRequest) handler.Response {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return handler.Error(Translate(tenant.ErrNoTenantInContext))
	}
	resp, err := h.svc.Refresh(ctx, t, req.RefreshToken, requestMeta(ctx.Request()))
	if err != nil {
		return handler.Fail(err)
	}
	return handler.Success("Token refreshed successfully", resp)
}

func (h *authHandlers) logout(ctx handler.Context, req auth.RefreshTokenRequest) handler.Response {
	t, ok := tenant.FromContext(ctx)
	if !ok {
		return handler.Error(Translate(tenant.ErrNoTenantInContext))
	}
	h.svc.Logout(ctx, t, req.RefreshToken, requestMeta(ctx.Request()))
	return handler.Success("Logout successful", nil)
}

func requestMeta(r *http.Request) auth.Meta {
	ip := clientip.GetIPFromContext(r.Context())
	if ip == "" {
		ip = clientip.GetIP(r)
	}
	return auth.Meta{IP: ip, UserAgent: clientip.UserAgent(r)}
}
