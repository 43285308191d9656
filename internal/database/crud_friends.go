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

// InsertFriendEvent appends one friend-link event. Both users must exist.
// The log records direction; state derivation happens at query time, so a
// "requested" after an "unfriend" simply starts a new request for the pair.
func (db *DB) InsertFriendEvent(ctx context.Context, event *models.FriendEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for _, id := range []int64{event.RequesterID, event.RequestedID} {
		if exists, err := db.userExists(ctx, id); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
	}

	if event.Created.IsZero() {
		event.Created = now()
	}

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO friend_events (requester_id, requested_id, status, created)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		event.RequesterID, event.RequestedID, string(event.Status), event.Created,
	)
	if err := row.Scan(&event.ID); err != nil {
		return fmt.Errorf("failed to insert friend event: %w", err)
	}
	return nil
}
