package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Header represents the JWT header as defined in RFC 7515.
type Header struct {
	Type      string `json:"typ,omitempty"`
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid,omitempty"`
}

// StandardClaims represents the registered JWT claims defined in RFC 7519 Section 4.1.
type StandardClaims struct {
	ID        string `json:"jti,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Issuer    string `json:"iss,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Valid validates the temporal claims against current time.
// Zero values are treated as unset.
func (c StandardClaims) Valid() error {
	now := time.Now().Unix()

	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return ErrExpiredToken
	}
	if c.NotBefore > 0 && now < c.NotBefore {
		return ErrInvalidToken
	}
	return nil
}

// ProfileClaims are the OIDC profile claims an identity provider puts into access tokens.
type ProfileClaims struct {
	StandardClaims
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
}

// Segments is a token split into its three encoded parts.
type Segments struct {
	Header    string
	Payload   string
	Signature string
}

// Split breaks a compact-serialized token into its segments.
// Returns ErrInvalidToken unless the token has exactly three parts.
func Split(token string) (Segments, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Segments{}, ErrInvalidToken
	}
	return Segments{Header: parts[0], Payload: parts[1], Signature: parts[2]}, nil
}

// DecodeHeader decodes the token header.
func (s Segments) DecodeHeader() (Header, error) {
	var h Header
	data, err := base64URLDecode(s.Header)
	if err != nil {
		return h, errors.Join(ErrInvalidToken, err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, errors.Join(ErrInvalidToken, err)
	}
	return h, nil
}

// DecodeClaims unmarshals the payload into claims.
func (s Segments) DecodeClaims(claims any) error {
	if claims == nil {
		return ErrMissingClaims
	}
	data, err := base64URLDecode(s.Payload)
	if err != nil {
		return errors.Join(ErrInvalidClaims, err)
	}
	if err := json.Unmarshal(data, claims); err != nil {
		return errors.Join(ErrInvalidClaims, err)
	}
	return nil
}

// Decode unmarshals the payload of token into claims without verifying the
// signature. Use it only for tokens received directly from a trusted issuer
// over an authenticated channel.
func Decode(token string, claims any) error {
	s, err := Split(token)
	if err != nil {
		return err
	}
	return s.DecodeClaims(claims)
}

// Encode builds an unsigned token (alg "none") from claims.
func Encode(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}
	header, err := json.Marshal(Header{Type: "JWT", Algorithm: "none"})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", errors.Join(ErrInvalidClaims, err)
	}
	return base64URLEncode(header) + "." + base64URLEncode(payload) + ".", nil
}

// base64URLEncode encodes data using base64url encoding without padding.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode decodes base64url data, tolerating both padded and unpadded input.
func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
