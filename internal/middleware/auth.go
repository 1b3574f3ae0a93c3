// Package middleware provides HTTP middleware for keyprobe.
package middleware

import (
	"context"
	"log"
	"net/http"

	"keyprobe/internal/auth"
	"keyprobe/internal/jwtauth"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwtauth.Claims, error)
}

// RequireBearer returns middleware that admits only requests carrying a
// token accepted by verifier. A nil verifier disables the check.
//
// Error responses:
//   - 401 Unauthorized: missing, malformed or rejected token
func RequireBearer(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				auth.WriteUnauthorized(w, err)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Printf("route=%s token rejected: %v", r.URL.Path, err)
				auth.WriteUnauthorized(w, err)
				return
			}

			ctx := jwtauth.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
