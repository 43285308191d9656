// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package api

import (
	"net/http"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/models"
)

// Overlap returns media of one kind where both users' current status is the
// one given. The authenticated user must be one of the two participants.
func (h *Handler) Overlap(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	otherID, ok := pathID(w, r, "otherID")
	if !ok {
		return
	}
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}

	sessionID := h.sessionUserID(r)
	if sessionID != userID && sessionID != otherID {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"session is not part of this comparison", nil)
		return
	}

	status, err := models.ParseConsumptionStatus(r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	for _, id := range []int64{userID, otherID} {
		if _, err := h.db.GetUserByID(r.Context(), id); err != nil {
			respondDomainError(w, err)
			return
		}
	}

	media, err := h.db.Overlap(r.Context(), userID, otherID, kind, status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, media, len(media), started)
}

// Feed returns the latest-state activity of the authenticated user's circle
// (accepted friends plus themselves), most recent first.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if !h.requireSelf(w, r, userID) {
		return
	}

	entries, err := h.db.FriendActivityFeed(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, entries, len(entries), started)
}
