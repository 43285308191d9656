// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// RecommendationsTo returns the latest pending recommendation per media
// aimed at userID for one kind, most recent first. The dedup key is
// (recipient, media): when several friends recommend the same title only the
// most recent recommendation surfaces, and an 'ignored' event retires the
// whole thread for that title. Each row carries the recipient's own latest
// consumption status for the media, nil when they have never logged it.
func (db *DB) RecommendationsTo(ctx context.Context, userID int64, kind models.MediaKind) (_ []models.IncomingRecommendation, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("recommendations_to", time.Since(start), err) }()

	query := fmt.Sprintf(`
		SELECT r.id, r.recommender_id, r.recommended_id, r.status, r.created,
		       %s,
		       u.id, u.subject, u.username, u.email, u.first_name, u.last_name,
		       u.avatar_url, u.created,
		       c.status
		FROM (
			SELECT id, recommender_id, recommended_id, media_id, status, created
			FROM recommendation_events
			WHERE media_kind = ? AND recommended_id = ?
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY recommended_id, media_id
				ORDER BY created DESC, id DESC) = 1
		) r
		JOIN %s m ON m.id = r.media_id
		JOIN users u ON u.id = r.recommender_id
		LEFT JOIN (
			SELECT user_id, media_id, status
			FROM consumption_events
			WHERE media_kind = ? AND user_id = ?
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY user_id, media_id
				ORDER BY created DESC, id DESC) = 1
		) c ON c.media_id = r.media_id
		WHERE r.status = 'pending'
		ORDER BY r.created DESC, r.id DESC`,
		mediaColumnsAliased(kind, "m"), kind.Table())

	rows, err := db.conn.QueryContext(ctx, query, kind.String(), userID, kind.String(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations to user %d: %w", userID, err)
	}
	defer rows.Close()

	recs := []models.IncomingRecommendation{}
	for rows.Next() {
		var rec models.IncomingRecommendation
		rec.Event.MediaKind = kind

		var status string
		var recipientStatus sql.NullString
		dest := []interface{}{&rec.Event.ID, &rec.Event.RecommenderID,
			&rec.Event.RecommendedID, &status, &rec.Event.Created}
		dest = append(dest, mediaScanDest(kind, &rec.Media)...)
		dest = append(dest, &rec.Recommender.ID, &rec.Recommender.Subject,
			&rec.Recommender.Username, &rec.Recommender.Email,
			&rec.Recommender.FirstName, &rec.Recommender.LastName,
			&rec.Recommender.AvatarURL, &rec.Recommender.Created,
			&recipientStatus)
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan incoming recommendation: %w", err)
		}
		rec.Event.MediaID = rec.Media.ID
		rec.Event.Status = models.RecommendationStatus(status)
		if recipientStatus.Valid {
			cs := models.ConsumptionStatus(recipientStatus.String)
			rec.RecipientStatus = &cs
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incoming recommendations: %w", err)
	}
	return recs, nil
}

// RecommendationsBy returns the latest recommendation per (recipient, media)
// sent by userID for one kind, most recent first, regardless of status.
func (db *DB) RecommendationsBy(ctx context.Context, userID int64, kind models.MediaKind) (_ []models.OutgoingRecommendation, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("recommendations_by", time.Since(start), err) }()

	query := fmt.Sprintf(`
		SELECT r.id, r.recommender_id, r.recommended_id, r.status, r.created,
		       %s,
		       u.id, u.subject, u.username, u.email, u.first_name, u.last_name,
		       u.avatar_url, u.created
		FROM (
			SELECT id, recommender_id, recommended_id, media_id, status, created
			FROM recommendation_events
			WHERE media_kind = ? AND recommender_id = ?
			QUALIFY ROW_NUMBER() OVER (
				PARTITION BY recommended_id, media_id
				ORDER BY created DESC, id DESC) = 1
		) r
		JOIN %s m ON m.id = r.media_id
		JOIN users u ON u.id = r.recommended_id
		ORDER BY r.created DESC, r.id DESC`,
		mediaColumnsAliased(kind, "m"), kind.Table())

	rows, err := db.conn.QueryContext(ctx, query, kind.String(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations by user %d: %w", userID, err)
	}
	defer rows.Close()

	recs := []models.OutgoingRecommendation{}
	for rows.Next() {
		var rec models.OutgoingRecommendation
		rec.Event.MediaKind = kind

		var status string
		dest := []interface{}{&rec.Event.ID, &rec.Event.RecommenderID,
			&rec.Event.RecommendedID, &status, &rec.Event.Created}
		dest = append(dest, mediaScanDest(kind, &rec.Media)...)
		dest = append(dest, &rec.Recipient.ID, &rec.Recipient.Subject,
			&rec.Recipient.Username, &rec.Recipient.Email,
			&rec.Recipient.FirstName, &rec.Recipient.LastName,
			&rec.Recipient.AvatarURL, &rec.Recipient.Created)
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan outgoing recommendation: %w", err)
		}
		rec.Event.MediaID = rec.Media.ID
		rec.Event.Status = models.RecommendationStatus(status)
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outgoing recommendations: %w", err)
	}
	return recs, nil
}
