// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

/*
query_social.go - Friendship state derivation

A friendship is keyed by the unordered user pair: every event between the
same two users, in either direction, belongs to one partition

	PARTITION BY least(requester_id, requested_id),
	             greatest(requester_id, requested_id)

and the latest event in that partition is the pair's current state. The
stored direction still matters for 'requested': it decides whose incoming
list the request appears in.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// latestFriendLinks is the latest-state subquery over friend_events for all
// pairs involving one user. Bind the user id twice.
const latestFriendLinks = `
	SELECT requester_id, requested_id, status, created
	FROM friend_events
	WHERE requester_id = ? OR requested_id = ?
	QUALIFY ROW_NUMBER() OVER (
		PARTITION BY least(requester_id, requested_id),
		             greatest(requester_id, requested_id)
		ORDER BY created DESC, id DESC) = 1`

// FriendsOf returns the users whose pair state with userID is currently
// 'accepted', ordered by username. Symmetric: a appears in b's list exactly
// when b appears in a's.
func (db *DB) FriendsOf(ctx context.Context, userID int64) (_ []models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("friends_of", time.Since(start), err) }()

	query := `
		SELECT ` + userColumns + `
		FROM (` + latestFriendLinks + `) f
		JOIN users ON users.id = CASE
			WHEN f.requester_id = ? THEN f.requested_id
			ELSE f.requester_id
		END
		WHERE f.status = 'accepted'
		ORDER BY users.username`

	rows, err := db.conn.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query friends of user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// IncomingRequests returns the users with a pending friend request aimed at
// userID: pairs whose latest event is 'requested' AND was sent by the other
// side. A request the user sent themselves is outgoing, not incoming, and a
// pair whose latest event is 'accepted' no longer appears at all.
func (db *DB) IncomingRequests(ctx context.Context, userID int64) (_ []models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("incoming_requests", time.Since(start), err) }()

	query := `
		SELECT ` + userColumns + `
		FROM (` + latestFriendLinks + `) f
		JOIN users ON users.id = f.requester_id
		WHERE f.status = 'requested' AND f.requested_id = ?
		ORDER BY f.created DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incoming requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// SearchUsers finds users whose email contains the given substring
// (case-insensitive), excluding the viewer, each annotated with the viewer's
// current pair state. A pair whose latest event is 'unfriend' reads as no
// relationship at all, same as two users with no shared history.
func (db *DB) SearchUsers(ctx context.Context, emailSubstring string, viewerID int64) (_ []models.UserWithFriendStatus, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("search_users", time.Since(start), err) }()

	query := `
		SELECT u.id, u.subject, u.username, u.email, u.first_name, u.last_name,
		       u.avatar_url, u.created, f.status, f.requester_id
		FROM users u
		LEFT JOIN (` + latestFriendLinks + `) f
			ON (f.requester_id = u.id OR f.requested_id = u.id)
		WHERE u.email ILIKE '%' || ? || '%' AND u.id <> ?
		ORDER BY u.email`

	rows, err := db.conn.QueryContext(ctx, query, viewerID, viewerID, emailSubstring, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	results := []models.UserWithFriendStatus{}
	for rows.Next() {
		var r models.UserWithFriendStatus
		var status sql.NullString
		var requesterID sql.NullInt64
		if err = rows.Scan(&r.ID, &r.Subject, &r.Username, &r.Email,
			&r.FirstName, &r.LastName, &r.AvatarURL, &r.Created,
			&status, &requesterID); err != nil {
			return nil, fmt.Errorf("failed to scan user search row: %w", err)
		}
		if status.Valid && status.String != string(models.FriendUnfriend) {
			fs := models.FriendStatus(status.String)
			r.FriendStatus = &fs
			if fs == models.FriendRequested {
				byViewer := requesterID.Valid && requesterID.Int64 == viewerID
				r.RequestedByViewer = &byViewer
			}
		}
		results = append(results, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user search rows: %w", err)
	}
	return results, nil
}

func collectUsers(rows *sql.Rows) ([]models.User, error) {
	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}
