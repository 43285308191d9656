// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

/*
query_consumption.go - Latest-state consumption queries

Latest-state resolution collapses an append-only log to one row per dedup
key: the row with the greatest created timestamp, ties broken by the greater
row id (later insert wins). Expressed uniformly as

	QUALIFY ROW_NUMBER() OVER (
	    PARTITION BY <dedup key> ORDER BY created DESC, id DESC) = 1

which makes every query here a pure function of the log snapshot: the same
data always yields the same result.
*/
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// mediaColumnsAliased prefixes each of a kind's columns with alias.
func mediaColumnsAliased(kind models.MediaKind, alias string) string {
	cols := strings.Split(mediaSelectColumns(kind), ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// ConsumptionFor returns the latest-state consumption events of one user for
// one media kind, joined to their media records, most recent first.
// An empty log yields an empty result.
func (db *DB) ConsumptionFor(ctx context.Context, userID int64, kind models.MediaKind) (_ []models.ConsumptionRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("consumption_for", time.Since(start), err) }()

	query := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.media_id, c.status, c.created, %s
		FROM (
			SELECT id, user_id, media_id, status, created
			FROM consumption_events
			WHERE user_id = ? AND media_kind = ?
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY user_id, media_id ORDER BY created DESC, id DESC) = 1
		) c
		JOIN %s m ON m.id = c.media_id
		ORDER BY c.created DESC, c.id DESC`,
		mediaColumnsAliased(kind, "m"), kind.Table())

	rows, err := db.conn.QueryContext(ctx, query, userID, kind.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption for user %d: %w", userID, err)
	}
	defer rows.Close()

	records := []models.ConsumptionRecord{}
	for rows.Next() {
		var rec models.ConsumptionRecord
		rec.Event.MediaKind = kind

		var status string
		dest := []interface{}{&rec.Event.ID, &rec.Event.UserID, &rec.Event.MediaID, &status, &rec.Event.Created}
		dest = append(dest, mediaScanDest(kind, &rec.Media)...)
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan consumption record: %w", err)
		}
		rec.Event.Status = models.ConsumptionStatus(status)
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consumption records: %w", err)
	}
	return records, nil
}

// Overlap returns media of one kind where BOTH users' latest consumption
// status is exactly the given status. A user whose latest event moved on to
// a different status no longer counts, even if an older event matched.
func (db *DB) Overlap(ctx context.Context, userA, userB int64, kind models.MediaKind, status models.ConsumptionStatus) (_ []models.Media, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("overlap", time.Since(start), err) }()

	mediaCols := mediaColumnsAliased(kind, "m")
	query := fmt.Sprintf(`
		SELECT %s
		FROM (
			SELECT user_id, media_id, status
			FROM consumption_events
			WHERE media_kind = ? AND user_id IN (?, ?)
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY user_id, media_id ORDER BY created DESC, id DESC) = 1
		) c
		JOIN %s m ON m.id = c.media_id
		WHERE c.status = ?
		GROUP BY %s
		HAVING COUNT(DISTINCT c.user_id) >= 2
		ORDER BY m.title`,
		mediaCols, kind.Table(), mediaCols)

	rows, err := db.conn.QueryContext(ctx, query, kind.String(), userA, userB, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query overlap: %w", err)
	}
	defer rows.Close()

	media := []models.Media{}
	for rows.Next() {
		var m models.Media
		if err = rows.Scan(mediaScanDest(kind, &m)...); err != nil {
			return nil, fmt.Errorf("failed to scan overlap media: %w", err)
		}
		media = append(media, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overlap media: %w", err)
	}
	return media, nil
}

// mediaScanDest returns scan destinations for a kind's columns, aligned with
// mediaSelectColumns, and sets m.Kind.
func mediaScanDest(kind models.MediaKind, m *models.Media) []interface{} {
	m.Kind = kind
	switch kind {
	case models.MediaKindBook:
		return []interface{}{&m.ID, &m.Source, &m.SourceID, &m.Title,
			&m.AuthorName, &m.PublishYear, &m.CoverURL, &m.Created}
	case models.MediaKindMovie:
		return []interface{}{&m.ID, &m.Source, &m.SourceID, &m.Title,
			&m.ReleaseDate, &m.CoverURL, &m.Created}
	case models.MediaKindTV:
		return []interface{}{&m.ID, &m.Source, &m.SourceID, &m.Title,
			&m.FirstAirDate, &m.Networks, &m.CoverURL, &m.Created}
	default:
		panic(fmt.Sprintf("invalid media kind %q", kind))
	}
}
