package middleware

import (
	"net/http"
	"strings"

	"boba-kart/internal/auth"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate verifies an Authorization bearer token when one is present
// and stores its claims in the request context. Requests without the header
// pass through anonymously; malformed or invalid tokens are rejected.
func Authenticate(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed authorization header")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authorization header must be a bearer token")
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Bearer token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects requests that carry no verified token.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.ClaimsFromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthenticated.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and callers lacking every
// one of roles with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthenticated.Message)
				return
			}
			if !claims.HasAnyRole(roles...) {
				writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, model.ErrForbidden.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
