// Package jwtauth verifies HS256 bearer tokens for the guarded diagnostic routes.
package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims accepted by the verifier.
type Claims struct {
	jwt.RegisteredClaims
}

// Config holds shared-secret verification settings.
type Config struct {
	Secret []byte
	Issuer string // optional; checked when set
	Leeway time.Duration
}

// Verifier checks token signatures and registered claims.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

var (
	ErrMissingSecret = errors.New("secret is required")
	ErrInvalidToken  = errors.New("invalid token")
)

// NewVerifier creates a new JWT verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}

	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = 30 * time.Second
	}

	return &Verifier{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		leeway: leeway,
	}, nil
}

// Verify verifies a JWT token and returns the claims.
// Tokens must be signed with HS256 and carry an expiry.
func (v *Verifier) Verify(_ context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Sign issues a token for subject valid for ttl.
func (v *Verifier) Sign(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type contextKey string

const ClaimsContextKey contextKey = "jwtclaims"

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaims retrieves JWT claims from the request context.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}
