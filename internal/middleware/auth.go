package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier turns a bearer token into session claims.
type TokenVerifier func(token string) (*services.Claims, error)

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the authenticated caller, if any.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*services.Claims)
	return c, ok && c != nil
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	id, err := c.UserID()
	if err != nil {
		return uuid.Nil
	}
	return id
}

// RequireAuth rejects requests without a valid bearer token with 401.
func RequireAuth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := verify(BearerToken(r))
			if err != nil {
				appErr := apperrors.From(err)
				writeError(w, http.StatusUnauthorized, apperrors.PublicMessage(appErr))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and never rejects.
func OptionalAuth(verify TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := BearerToken(r); token != "" {
				if claims, err := verify(token); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelf allows the request only when the URL parameter param equals the
// authenticated user id. Must run after RequireAuth.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := UserIDFromContext(r.Context())
			target, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid user id")
				return
			}
			if caller == uuid.Nil || caller != target {
				writeError(w, http.StatusForbidden, "You can only manage your own account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
