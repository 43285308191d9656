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

// InsertConsumptionEvent appends one consumption event. The referenced user
// and media row must already exist; the event's id and created timestamp are
// assigned here. Appends need no coordination between concurrent callers.
func (db *DB) InsertConsumptionEvent(ctx context.Context, event *models.ConsumptionEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if exists, err := db.userExists(ctx, event.UserID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("user %d: %w", event.UserID, ErrUserNotFound)
	}
	if exists, err := db.mediaExists(ctx, event.MediaKind, event.MediaID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%s %d: %w", event.MediaKind, event.MediaID, ErrMediaNotFound)
	}

	if event.Created.IsZero() {
		event.Created = now()
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO consumption_events (user_id, media_kind, media_id, status, created)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		event.UserID, event.MediaKind.String(), event.MediaID, string(event.Status), event.Created,
	)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("failed to insert consumption event: %w", err)
	}
	return nil
}
