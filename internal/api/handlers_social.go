// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package api

import (
	"net/http"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// friendEventRequest appends one friend-link event. RequesterID is the
// author of the event: for "requested" the person asking, for "accepted" or
// "rejected" the person answering, for "unfriend" whoever walks away.
type friendEventRequest struct {
	RequesterID int64  `json:"requester_id" validate:"required,gt=0"`
	RequestedID int64  `json:"requested_id" validate:"required,gt=0,nefield=RequesterID"`
	Status      string `json:"status" validate:"required,friendstatus"`
}

// CreateFriendEvent appends a friend-link event authored by the
// authenticated user.
func (h *Handler) CreateFriendEvent(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req friendEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireSelf(w, r, req.RequesterID) {
		return
	}

	event := &models.FriendEvent{
		RequesterID: req.RequesterID,
		RequestedID: req.RequestedID,
		Status:      models.FriendStatus(req.Status),
	}
	if err := h.db.InsertFriendEvent(r.Context(), event); err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("requester_id", event.RequesterID).
		Int64("requested_id", event.RequestedID).
		Str("status", req.Status).
		Msg("Friend event logged")

	respondData(w, http.StatusCreated, event, 1, started)
}

// Friends lists a user's current friends.
func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}

	friends, err := h.db.FriendsOf(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, friends, len(friends), started)
}

// FriendRequests lists the open requests aimed at the authenticated user.
func (h *Handler) FriendRequests(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if !h.requireSelf(w, r, userID) {
		return
	}

	requests, err := h.db.IncomingRequests(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, requests, len(requests), started)
}

// SearchUsers finds users by email substring, annotated with the
// authenticated viewer's friendship state.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"email query parameter is required", nil)
		return
	}

	viewerID := h.sessionUserID(r)
	results, err := h.db.SearchUsers(r.Context(), email, viewerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, results, len(results), started)
}
