// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// FriendActivityFeed returns the latest-state consumption events of userID's
// accepted friends plus the user themselves, across all three media kinds,
// most recent first. Each entry reports whole hours elapsed since the event;
// recency ties between entries are broken by event id descending.
func (db *DB) FriendActivityFeed(ctx context.Context, userID int64) (_ []models.FeedEntry, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("friend_activity_feed", time.Since(start), err) }()

	query := `
		WITH latest_links AS (` + latestFriendLinks + `
		),
		circle AS (
			SELECT CASE
				WHEN requester_id = ? THEN requested_id
				ELSE requester_id
			END AS user_id
			FROM latest_links
			WHERE status = 'accepted'
			UNION
			SELECT CAST(? AS BIGINT)
		),
		latest AS (
			SELECT id, user_id, media_kind, media_id, status, created
			FROM consumption_events
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY user_id, media_kind, media_id
				ORDER BY created DESC, id DESC) = 1
		)
		SELECT u.id, u.subject, u.username, u.email, u.first_name, u.last_name,
		       u.avatar_url, u.created,
		       l.id, l.media_kind, l.media_id, l.status, l.created,
		       COALESCE(b.source, mv.source, tv.source),
		       COALESCE(b.source_id, mv.source_id, tv.source_id),
		       COALESCE(b.title, mv.title, tv.title),
		       b.author_name, b.publish_year,
		       mv.release_date,
		       tv.first_air_date, tv.networks,
		       COALESCE(b.cover_url, mv.poster_url, tv.poster_url),
		       COALESCE(b.created, mv.created, tv.created)
		FROM latest l
		JOIN circle ON circle.user_id = l.user_id
		JOIN users u ON u.id = l.user_id
		LEFT JOIN books b ON l.media_kind = 'book' AND b.id = l.media_id
		LEFT JOIN movies mv ON l.media_kind = 'movie' AND mv.id = l.media_id
		LEFT JOIN tv_shows tv ON l.media_kind = 'tv' AND tv.id = l.media_id
		ORDER BY l.created DESC, l.id DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity feed for user %d: %w", userID, err)
	}
	defer rows.Close()

	queriedAt := now()
	entries := []models.FeedEntry{}
	for rows.Next() {
		var e models.FeedEntry
		var kind, status string
		var mediaCreated sql.NullTime
		if err = rows.Scan(
			&e.User.ID, &e.User.Subject, &e.User.Username, &e.User.Email,
			&e.User.FirstName, &e.User.LastName, &e.User.AvatarURL, &e.User.Created,
			&e.Event.ID, &kind, &e.Event.MediaID, &status, &e.Event.Created,
			&e.Media.Source, &e.Media.SourceID, &e.Media.Title,
			&e.Media.AuthorName, &e.Media.PublishYear,
			&e.Media.ReleaseDate,
			&e.Media.FirstAirDate, &e.Media.Networks,
			&e.Media.CoverURL,
			&mediaCreated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}

		e.Event.UserID = e.User.ID
		e.Event.Status = models.ConsumptionStatus(status)
		e.Event.MediaKind, err = models.ParseMediaKind(kind)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed media kind: %w", err)
		}
		e.Media.ID = e.Event.MediaID
		e.Media.Kind = e.Event.MediaKind
		if mediaCreated.Valid {
			e.Media.Created = mediaCreated.Time
		}
		e.ElapsedHours = int64(math.Round(queriedAt.Sub(e.Event.Created).Hours()))
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feed entries: %w", err)
	}
	return entries, nil
}
