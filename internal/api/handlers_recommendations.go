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

// recommendationRequest appends one recommendation event. The media must
// already exist (it was upserted when someone logged it or can be created
// via the consumption endpoint); no placeholder rows are created here.
// Status defaults to pending; the recipient sets "ignored" to dismiss.
type recommendationRequest struct {
	RecommenderID int64  `json:"recommender_id" validate:"required,gt=0"`
	RecommendedID int64  `json:"recommended_id" validate:"required,gt=0,nefield=RecommenderID"`
	MediaKind     string `json:"media_kind" validate:"required,mediakind"`
	MediaID       int64  `json:"media_id" validate:"required,gt=0"`
	Status        string `json:"status" validate:"omitempty,recstatus"`
}

// CreateRecommendation appends a recommendation event authored by the
// authenticated user. The recipient dismissing a thread posts the same
// shape with status "ignored" and the original recommender id.
func (h *Handler) CreateRecommendation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req recommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Either side of the thread may append: the recommender when sending,
	// the recipient when dismissing.
	sessionID := h.sessionUserID(r)
	if sessionID != req.RecommenderID && sessionID != req.RecommendedID {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized,
			"session is not part of this recommendation", nil)
		return
	}

	event := &models.RecommendationEvent{
		RecommenderID: req.RecommenderID,
		RecommendedID: req.RecommendedID,
		MediaKind:     models.MediaKind(req.MediaKind),
		MediaID:       req.MediaID,
		Status:        models.RecommendationStatus(req.Status),
	}
	if err := h.db.InsertRecommendationEvent(r.Context(), event); err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("recommender_id", event.RecommenderID).
		Int64("recommended_id", event.RecommendedID).
		Str("kind", event.MediaKind.String()).
		Int64("media_id", event.MediaID).
		Str("status", string(event.Status)).
		Msg("Recommendation logged")

	respondData(w, http.StatusCreated, event, 1, started)
}

// RecommendationsTo lists pending recommendations aimed at the
// authenticated user for one kind.
func (h *Handler) RecommendationsTo(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if !h.requireSelf(w, r, userID) {
		return
	}
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}

	recs, err := h.db.RecommendationsTo(r.Context(), userID, kind)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, recs, len(recs), started)
}

// RecommendationsBy lists the recommendations the authenticated user has
// sent for one kind.
func (h *Handler) RecommendationsBy(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if !h.requireSelf(w, r, userID) {
		return
	}
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}

	recs, err := h.db.RecommendationsBy(r.Context(), userID, kind)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, recs, len(recs), started)
}
