package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	roleServiceRole   = "service_role"
	roleAuthenticated = "authenticated"
)

// Claims holds the fields of a Supabase-issued JWT that this service reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with the auth project's shared secret.
// It mints short-lived service_role tokens for admin API calls and verifies
// user session tokens issued by the auth server.
type Provider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewProvider(secret string, serviceTokenTTL time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if serviceTokenTTL <= 0 {
		serviceTokenTTL = time.Minute
	}
	return &Provider{secret: []byte(secret), expiry: serviceTokenTTL, now: time.Now}, nil
}

// ServiceToken returns a freshly signed service_role token.
func (p *Provider) ServiceToken() (string, error) {
	now := p.now()
	claims := Claims{
		Role: roleServiceRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "medskill-verify",
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return s, nil
}

// Verify parses a user session token. Only "authenticated" tokens with a subject are accepted.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Role != roleAuthenticated || claims.Subject == "" {
		return nil, errors.New("not a user session token")
	}
	return claims, nil
}
