// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/goodtimes-app/goodtimes/internal/database"
	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/metadata"
	"github.com/goodtimes-app/goodtimes/internal/models"
	"github.com/goodtimes-app/goodtimes/internal/validation"
)

// maxBodyBytes caps request bodies; media records plus a status fit well
// under this.
const maxBodyBytes = 1 << 20

// respondJSON writes the envelope with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope around data, with result count and
// query time metadata.
func respondData(w http.ResponseWriter, status int, data interface{}, count int, started time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
			Count:       count,
		},
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError writes the field-level error detail produced by the
// validator.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// respondDomainError maps query-core and provider errors onto the HTTP
// error taxonomy.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case database.IsNotFound(err):
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, metadata.ErrUpstreamUnavailable):
		respondError(w, http.StatusBadGateway, models.ErrCodeUpstreamUnavailable,
			"metadata provider unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal,
			"internal error", err)
	}
}

// decodeBody decodes and validates a JSON request body. A false return
// means the response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			"invalid JSON body", err)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidationError(w, verr.ToAPIError())
		return false
	}
	return true
}

// pathID parses a numeric path parameter. A false return means the response
// has already been written.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation,
			name+" must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// pathKind parses the {kind} path parameter. A false return means the
// response has already been written.
func pathKind(w http.ResponseWriter, r *http.Request) (models.MediaKind, bool) {
	kind, err := models.ParseMediaKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return "", false
	}
	return kind, true
}
