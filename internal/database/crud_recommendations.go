// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"fmt"

	"github.com/goodtimes-app/goodtimes/internal/models"
)

// InsertRecommendationEvent appends one recommendation event. Recommender,
// recipient, and the referenced media must all exist already: a
// recommendation never creates a placeholder media row, it fails with a
// not-found error instead.
func (db *DB) InsertRecommendationEvent(ctx context.Context, event *models.RecommendationEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for _, id := range []int64{event.RecommenderID, event.RecommendedID} {
		if exists, err := db.userExists(ctx, id); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
	}
	if exists, err := db.mediaExists(ctx, event.MediaKind, event.MediaID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%s %d: %w", event.MediaKind, event.MediaID, ErrMediaNotFound)
	}

	if event.Status == "" {
		event.Status = models.RecommendationPending
	}
	if event.Created.IsZero() {
		event.Created = now()
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO recommendation_events (recommender_id, recommended_id, media_kind, media_id, status, created)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		event.RecommenderID, event.RecommendedID, event.MediaKind.String(), event.MediaID,
		string(event.Status), event.Created,
	)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("failed to insert recommendation event: %w", err)
	}
	return nil
}
