// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/goodtimes-app/goodtimes/internal/auth"
	"github.com/goodtimes-app/goodtimes/internal/logging"
)

const sessionClaimsKey contextKey = "session_claims"

// SessionValidator validates a session token string. Satisfied by
// auth.JWTManager; the indirection keeps handler tests free of real keys.
type SessionValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// RequireSession guards a route subtree: a valid bearer session token is
// required, and its claims travel in the request context. The response body
// for a refused request is written by the caller-supplied reject func so the
// package stays ignorant of the API envelope.
func RequireSession(validator SessionValidator, reject func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				reject(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("Session token rejected")
				reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaims returns the authenticated session's claims, or nil outside
// a guarded route.
func SessionClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(sessionClaimsKey).(*auth.Claims)
	return claims
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
