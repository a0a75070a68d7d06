package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gym-membership-subscription/internal/domain"
	"gym-membership-subscription/internal/domain/ports/identity"
)

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret []byte
	TTL        time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret: []byte(secret),
		TTL:        ttl,
	}}
}

// Claims carries the caller's identity. Role distinguishes members from
// admins; Subject is the user id.
type Claims struct {
	Role        string `json:"role"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Mint signs a token for the given identity. Used by the seed tool and in
// tests; production deployments mint tokens at the identity provider's edge.
func (a *AuthManager) Mint(subject, role, email, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        role,
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.cfg.HMACSecret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*Claims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ===== Request-scoped identity =====

type claimsCtxKey struct{}

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, c)
}

func claimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return c, ok
}

// Ensure sessionProvider implements identity.Provider
var _ identity.Provider = (*sessionProvider)(nil)

// sessionProvider resolves the caller identity from the verified claims the
// auth middleware stored on the request context.
type sessionProvider struct{}

func NewSessionProvider() *sessionProvider { return &sessionProvider{} }

func (sessionProvider) Current(ctx context.Context) (*identity.Context, error) {
	c, ok := claimsFrom(ctx)
	if !ok || c.Subject == "" {
		return nil, domain.ErrNoIdentity
	}
	return &identity.Context{
		UserID:      c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}, nil
}
