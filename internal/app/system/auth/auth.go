// Package auth verifies bearer tokens on incoming requests and enforces
// role-based access.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"go.uber.org/zap"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the verified claims stored by RequireSignedIn.
func CurrentUser(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(currentUserKey).(*Claims)
	return c, ok && c != nil
}

// WithTestUser injects claims directly. Handler tests use it to skip token
// signing.
func WithTestUser(r *http.Request, c *Claims) *http.Request {
	return withUser(r, c)
}

func withUser(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, c))
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware holds what the request-time auth checks need.
type Middleware struct {
	Tokens *TokenManager
	Log    *zap.Logger
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(tokens *TokenManager, logger *zap.Logger) *Middleware {
	return &Middleware{Tokens: tokens, Log: logger}
}

// RequireSignedIn verifies the bearer token and stores its claims in the
// request context. Missing, malformed and expired tokens get a 401.
func (m *Middleware) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Tokens.Verify(BearerToken(r))
		if err != nil {
			msg := "invalid token"
			switch {
			case errors.Is(err, ErrTokenMissing):
				msg = "not logged in"
			case errors.Is(err, ErrTokenExpired):
				msg = "token expired"
			}
			m.Log.Debug("bearer token rejected", zap.Error(err), zap.String("path", r.URL.Path))
			apierr.Write(w, apierr.CodeUnauthenticated, msg)
			return
		}
		next.ServeHTTP(w, withUser(r, claims))
	})
}

// RequireRole allows the request only when the verified role is one of
// allowed. Roles compare by exact string match; there is no hierarchy.
// It must run after RequireSignedIn.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apierr.Write(w, apierr.CodeUnauthenticated, "not logged in")
				return
			}
			if _, has := set[u.Role]; !has {
				apierr.Write(w, apierr.CodeForbidden,
					"you do not have permission to access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
