package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/authgateway/pkg/logger"
	"github.com/dmitrymomot/authgateway/pkg/tenant"
)

// HTTPClient is a Keycloak-style realm client bound to a single tenant.
type HTTPClient struct {
	tenantKey    string
	clientID     string
	clientSecret string

	tokenURL  string
	logoutURL string
	usersURL  string

	transport *http.Transport
	http      *http.Client
	oauth     *oauth2.Config
	admin     *http.Client

	closed atomic.Bool
	logger *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient binds a client to the tenant's realm, credentials and base URL.
func NewHTTPClient(t *tenant.Tenant, cfg Config, log *slog.Logger) (*HTTPClient, error) {
	if t == nil || t.BaseURL == "" || t.RealmName == "" || t.ClientID == "" {
		return nil, ErrInvalidTenant
	}
	base, err := url.Parse(strings.TrimRight(t.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidTenant, t.BaseURL)
	}
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		MaxIdleConns:          cfg.MaxConns,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		ForceAttemptHTTP2:     true,
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.RequestTimeout}

	realm := base.JoinPath("realms", t.RealmName, "protocol", "openid-connect")
	tokenURL := realm.JoinPath("token").String()

	c := &HTTPClient{
		tenantKey:    t.Key,
		clientID:     t.ClientID,
		clientSecret: t.ClientSecret,
		tokenURL:     tokenURL,
		logoutURL:    realm.JoinPath("logout").String(),
		usersURL:     base.JoinPath("admin", "realms", t.RealmName, "users").String(),
		transport:    transport,
		http:         httpClient,
		oauth: &oauth2.Config{
			ClientID:     t.ClientID,
			ClientSecret: t.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		logger: log.With(logger.TenantKey(t.Key), logger.Component("idp")),
	}

	// The admin token is fetched lazily and refreshed by the token source.
	cc := &clientcredentials.Config{
		ClientID:     t.ClientID,
		ClientSecret: t.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	c.admin = cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, httpClient))
	c.admin.Timeout = cfg.RequestTimeout

	return c, nil
}

// PasswordGrant implements Client.
func (c *HTTPClient) PasswordGrant(ctx context.Context, username, password string) (*TokenSet, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	tok, err := c.oauth.PasswordCredentialsToken(c.oauthContext(ctx), username, password)
	if err != nil {
		c.logger.WarnContext(ctx, "password grant failed", logger.Error(err))
		return nil, mapGrantError(err, ErrInvalidCredentials)
	}
	return newTokenSet(tok), nil
}

// RefreshGrant implements Client.
func (c *HTTPClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	tok, err := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		c.logger.WarnContext(ctx, "refresh grant failed", logger.Error(err))
		return nil, mapGrantError(err, ErrInvalidRefreshToken)
	}
	return newTokenSet(tok), nil
}

// Logout implements Client.
func (c *HTTPClient) Logout(ctx context.Context, refreshToken string) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.logoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return unexpectedStatus("logout", resp)
	}
	return nil
}

// FindUsersByEmail implements Client.
func (c *HTTPClient) FindUsersByEmail(ctx context.Context, email string) ([]User, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	u, _ := url.Parse(c.usersURL)
	u.RawQuery = url.Values{"email": {email}, "exact": {"true"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.admin.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("search users", resp)
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", ErrUnexpectedResponse, err)
	}
	return users, nil
}

// CreateUser implements Client.
func (c *HTTPClient) CreateUser(ctx context.Context, user User) (string, error) {
	if c.closed.Load() {
		return "", ErrClientClosed
	}

	body, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.usersURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.admin.Do(req)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return "", ErrUserAlreadyExists
	default:
		return "", unexpectedStatus("create user", resp)
	}

	id := userIDFromLocation(resp.Header.Get("Location"))
	if id == "" {
		return "", fmt.Errorf("%w: create user: missing Location header", ErrUnexpectedResponse)
	}
	return id, nil
}

// ResetPassword implements Client.
func (c *HTTPClient) ResetPassword(ctx context.Context, userID, password string) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	body, err := json.Marshal(map[string]any{
		"type":      "password",
		"value":     password,
		"temporary": false,
	})
	if err != nil {
		return err
	}

	target := c.usersURL + "/" + url.PathEscape(userID) + "/reset-password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.admin.Do(req)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return unexpectedStatus("reset password", resp)
	}
}

// Close implements Client. Safe to call multiple times.
func (c *HTTPClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.transport.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// mapGrantError translates token endpoint failures. A 4xx maps to rejected,
// except that a non-401 password rejection is reported with its status.
// Transport and server failures are still authentication failures for the caller.
func mapGrantError(err error, rejected error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		code := re.Response.StatusCode
		switch {
		case errors.Is(rejected, ErrInvalidCredentials) && code == http.StatusUnauthorized:
			return rejected
		case errors.Is(rejected, ErrInvalidRefreshToken) && code >= 400 && code < 500:
			return rejected
		case code >= 400 && code < 500:
			return fmt.Errorf("%w: status %d", ErrAuthenticationFailed, code)
		}
	}
	return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
}

func newTokenSet(tok *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:      tok.AccessToken,
		RefreshToken:     tok.RefreshToken,
		TokenType:        tok.TokenType,
		ExpiresIn:        extraInt(tok, "expires_in"),
		RefreshExpiresIn: extraInt(tok, "refresh_expires_in"),
	}
	if ts.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		ts.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return ts
}

// extraInt reads a numeric field from the raw token response.
func extraInt(tok *oauth2.Token, key string) int64 {
	switch v := tok.Extra(key).(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func userIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	if u, err := url.Parse(location); err == nil {
		location = u.Path
	}
	location = strings.TrimRight(location, "/")
	if i := strings.LastIndexByte(location, '/'); i >= 0 {
		return location[i+1:]
	}
	return location
}

func unexpectedStatus(op string, resp *http.Response) error {
	return fmt.Errorf("%w: %s: status %d", ErrUnexpectedResponse, op, resp.StatusCode)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
