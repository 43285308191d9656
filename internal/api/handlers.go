// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

// Package api is the HTTP surface: a chi router serving the JSON API under
// /api/v1, with the envelope {status, data, metadata, error} on every
// response.
package api

import (
	"net/http"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/auth"
	"github.com/goodtimes-app/goodtimes/internal/database"
	"github.com/goodtimes-app/goodtimes/internal/metadata"
	"github.com/goodtimes-app/goodtimes/internal/middleware"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// Handler carries the API's collaborators.
type Handler struct {
	db       *database.DB
	metadata *metadata.Service
	sessions *auth.JWTManager
	verifier auth.IdentityVerifier
}

// NewHandler wires the handler set.
func NewHandler(db *database.DB, meta *metadata.Service, sessions *auth.JWTManager, verifier auth.IdentityVerifier) *Handler {
	return &Handler{
		db:       db,
		metadata: meta,
		sessions: sessions,
		verifier: verifier,
	}
}

// sessionUserID returns the authenticated user's id. The session guard runs
// before every handler that calls this; a zero return means the guard was
// bypassed, which respondError turns into a 401 anyway.
func (h *Handler) sessionUserID(r *http.Request) int64 {
	claims := middleware.SessionClaims(r.Context())
	if claims == nil {
		return 0
	}
	return claims.UserID
}

// requireSelf checks that a viewer-scoped route is being used by its viewer.
// A false return means the response has already been written.
func (h *Handler) requireSelf(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if h.sessionUserID(r) != userID {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"session does not match the requested user", nil)
		return false
	}
	return true
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	status := "ok"
	httpStatus := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	respondData(w, httpStatus, map[string]string{"status": status}, 0, started)
}
