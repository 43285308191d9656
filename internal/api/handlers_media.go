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

// Search proxies a metadata title lookup for one media kind.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"title query parameter is required", nil)
		return
	}

	results, err := h.metadata.Search(r.Context(), kind, title)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, results, len(results), started)
}

// logConsumptionRequest is the normalized media record (as returned by
// Search) plus the consumption status to log.
type logConsumptionRequest struct {
	Source   string `json:"source" validate:"required"`
	SourceID string `json:"source_id" validate:"required"`
	Title    string `json:"title" validate:"required"`

	AuthorName   *string    `json:"author_name"`
	PublishYear  *int       `json:"publish_year"`
	ReleaseDate  *time.Time `json:"release_date"`
	FirstAirDate *time.Time `json:"first_air_date"`
	Networks     *string    `json:"networks"`
	CoverURL     *string    `json:"cover_url"`

	Status string `json:"status" validate:"required,consumptionstatus"`
}

// LogConsumption appends a consumption event for the authenticated user,
// upserting the media record by (source, source_id) first. Logging the same
// status again is harmless: latest-state resolution collapses it.
func (h *Handler) LogConsumption(w http.ResponseWriter, r *http.Request) {
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

	var req logConsumptionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	media, err := h.db.UpsertMedia(r.Context(), &models.Media{
		Kind:         kind,
		Source:       req.Source,
		SourceID:     req.SourceID,
		Title:        req.Title,
		AuthorName:   req.AuthorName,
		PublishYear:  req.PublishYear,
		ReleaseDate:  req.ReleaseDate,
		FirstAirDate: req.FirstAirDate,
		Networks:     req.Networks,
		CoverURL:     req.CoverURL,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	event := &models.ConsumptionEvent{
		UserID:    userID,
		MediaKind: kind,
		MediaID:   media.ID,
		Status:    models.ConsumptionStatus(req.Status),
	}
	if err := h.db.InsertConsumptionEvent(r.Context(), event); err != nil {
		respondDomainError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("user_id", userID).
		Str("kind", kind.String()).
		Int64("media_id", media.ID).
		Str("status", req.Status).
		Msg("Consumption logged")

	respondData(w, http.StatusCreated, &models.ConsumptionRecord{
		Event: *event,
		Media: *media,
	}, 1, started)
}

// UserConsumption returns a user's latest-state consumption list for one
// kind.
func (h *Handler) UserConsumption(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), userID); err != nil {
		respondDomainError(w, err)
		return
	}

	records, err := h.db.ConsumptionFor(r.Context(), userID, kind)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondData(w, http.StatusOK, records, len(records), started)
}
