// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package api

import (
	"net/http"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/auth"
	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

type loginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login exchanges a verified provider ID token for a local session token,
// provisioning the user on first sight of the subject.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	identity, err := h.verifier.VerifyIDToken(r.Context(), req.IDToken)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("ID token verification failed")
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"identity verification failed", nil)
		return
	}

	user, err := h.db.ProvisionUser(r.Context(), auth.UserFromIdentity(identity))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := h.sessions.GenerateToken(user)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("User logged in")

	respondData(w, http.StatusOK, &loginResponse{Token: token, User: user}, 0, started)
}
