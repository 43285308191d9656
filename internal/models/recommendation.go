// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import (
	"fmt"
	"time"
)

// RecommendationStatus tracks what the recipient did with a recommendation.
type RecommendationStatus string

const (
	RecommendationPending RecommendationStatus = "pending"
	RecommendationIgnored RecommendationStatus = "ignored"
)

// ParseRecommendationStatus validates a recommendation status string.
func ParseRecommendationStatus(s string) (RecommendationStatus, error) {
	switch RecommendationStatus(s) {
	case RecommendationPending, RecommendationIgnored:
		return RecommendationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown recommendation status %q: must be 'pending' or 'ignored'", s)
	}
}

// RecommendationEvent is one immutable row in the recommendation log.
// The media it references must already exist; a recommendation never creates
// a placeholder media row.
type RecommendationEvent struct {
	ID            int64                `json:"id"`
	RecommenderID int64                `json:"recommender_id"`
	RecommendedID int64                `json:"recommended_id"`
	MediaKind     MediaKind            `json:"media_kind"`
	MediaID       int64                `json:"media_id"`
	Status        RecommendationStatus `json:"status"`
	Created       time.Time            `json:"created"`
}

// IncomingRecommendation is a latest-state recommendation to a user, joined
// to the media, the recommender, and the recipient's own latest consumption
// status for that media. RecipientStatus is nil when the recipient has not
// logged the media yet.
type IncomingRecommendation struct {
	Event           RecommendationEvent `json:"event"`
	Media           Media               `json:"media"`
	Recommender     User                `json:"recommender"`
	RecipientStatus *ConsumptionStatus  `json:"recipient_status,omitempty"`
}

// OutgoingRecommendation is a latest-state recommendation made by a user,
// joined to the media and the recipient's user record.
type OutgoingRecommendation struct {
	Event     RecommendationEvent `json:"event"`
	Media     Media               `json:"media"`
	Recipient User                `json:"recipient"`
}
