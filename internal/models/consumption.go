// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import (
	"fmt"
	"time"
)

// ConsumptionStatus is a user's relationship to a media item at a point in
// time. Status changes are recorded as new events, never updates.
type ConsumptionStatus string

const (
	StatusWantToConsume ConsumptionStatus = "want to consume"
	StatusConsuming     ConsumptionStatus = "consuming"
	StatusFinished      ConsumptionStatus = "finished"
	StatusAbandoned     ConsumptionStatus = "abandoned"
)

// ParseConsumptionStatus validates a status string from a request body.
func ParseConsumptionStatus(s string) (ConsumptionStatus, error) {
	switch ConsumptionStatus(s) {
	case StatusWantToConsume, StatusConsuming, StatusFinished, StatusAbandoned:
		return ConsumptionStatus(s), nil
	default:
		return "", fmt.Errorf("unknown consumption status %q: must be one of 'want to consume', 'consuming', 'finished', 'abandoned'", s)
	}
}

// ConsumptionEvent is one immutable row in the consumption log.
// Dedup key is (user, media kind, media id); the current state for a key is
// the row with the greatest (created, id).
type ConsumptionEvent struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	MediaKind MediaKind         `json:"media_kind"`
	MediaID   int64             `json:"media_id"`
	Status    ConsumptionStatus `json:"status"`
	Created   time.Time         `json:"created"`
}

// ConsumptionRecord is a latest-state consumption event joined to its media
// row, as returned by the consumption query.
type ConsumptionRecord struct {
	Event ConsumptionEvent `json:"event"`
	Media Media            `json:"media"`
}
