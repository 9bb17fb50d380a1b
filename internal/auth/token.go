// Package auth issues and verifies the signed bearer tokens used by the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"boba-kart/internal/config"
	"boba-kart/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. Roles serialise as a "role" array so every
// role is a separate claim value.
type Claims struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"role"`
	jwt.RegisteredClaims
}

// HasAnyRole reports whether the token carries one of roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	return model.HasAnyRole(c.Roles, roles...)
}

// Token is a freshly issued bearer token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
	Lifetime  time.Duration
}

// ErrInvalidToken is returned for tokens that fail signature, expiry or audience checks.
var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewIssuer creates an issuer from auth configuration.
func NewIssuer(cfg config.AuthConfig) *Issuer {
	return &Issuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.TokenLifetime,
		now:      time.Now,
	}
}

// Issue signs a token for u. Accounts without roles get the default role.
func (i *Issuer) Issue(u *model.User) (*Token, error) {
	now := i.now().UTC()
	expires := now.Add(i.lifetime)
	jti := uuid.NewString()

	roles := u.Roles
	if len(roles) == 0 {
		roles = []string{model.DefaultRole}
	}

	claims := Claims{
		Name:  u.NameOrEmail(),
		Email: u.Email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		Value:     signed,
		ID:        jti,
		ExpiresAt: expires,
		Lifetime:  i.lifetime,
	}, nil
}

// Parse verifies a token string and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}
