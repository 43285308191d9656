// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// mediaSelectColumns returns the column list for a kind's table, aligned
// with scanMedia.
func mediaSelectColumns(kind models.MediaKind) string {
	switch kind {
	case models.MediaKindBook:
		return `id, source, source_id, title, author_name, publish_year, cover_url, created`
	case models.MediaKindMovie:
		return `id, source, source_id, title, release_date, poster_url, created`
	case models.MediaKindTV:
		return `id, source, source_id, title, first_air_date, networks, poster_url, created`
	default:
		panic(fmt.Sprintf("invalid media kind %q", kind))
	}
}

// scanMedia scans one row of a kind's table into a Media record.
func scanMedia(row interface{ Scan(...interface{}) error }, kind models.MediaKind, m *models.Media) error {
	return row.Scan(mediaScanDest(kind, m)...)
}

// UpsertMedia finds or creates the canonical media row for
// (media.Kind, media.Source, media.SourceID) and returns it with its id set.
// The insert is fallible under the UNIQUE(source, source_id) constraint:
// when two concurrent first-time inserts race, the loser's insert is a
// no-op and both callers re-read the same row. Existing rows are never
// updated; the provider's fields are denormalized only at creation.
func (db *DB) UpsertMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if existing, err := db.getMediaBySourceID(ctx, media.Kind, media.Source, media.SourceID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrMediaNotFound) {
		return nil, err
	}

	created := media.Created
	if created.IsZero() {
		created = now()
	}

	var err error
	switch media.Kind {
	case models.MediaKindBook:
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO books (source, source_id, title, author_name, publish_year, cover_url, created)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (source, source_id) DO NOTHING`,
			media.Source, media.SourceID, media.Title, media.AuthorName, media.PublishYear, media.CoverURL, created)
	case models.MediaKindMovie:
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO movies (source, source_id, title, release_date, poster_url, created)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (source, source_id) DO NOTHING`,
			media.Source, media.SourceID, media.Title, media.ReleaseDate, media.CoverURL, created)
	case models.MediaKindTV:
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO tv_shows (source, source_id, title, first_air_date, networks, poster_url, created)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (source, source_id) DO NOTHING`,
			media.Source, media.SourceID, media.Title, media.FirstAirDate, media.Networks, media.CoverURL, created)
	default:
		panic(fmt.Sprintf("invalid media kind %q", media.Kind))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", media.Kind, err)
	}

	upserted, err := db.getMediaBySourceID(ctx, media.Kind, media.Source, media.SourceID)
	if err != nil {
		return nil, err
	}
	if upserted.Created.Equal(created) {
		logging.Info().
			Str("kind", media.Kind.String()).
			Str("source_id", media.SourceID).
			Int64("media_id", upserted.ID).
			Msg("Created media record")
	}
	return upserted, nil
}

// GetMediaByID fetches one media row, or ErrMediaNotFound.
func (db *DB) GetMediaByID(ctx context.Context, kind models.MediaKind, id int64) (*models.Media, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, mediaSelectColumns(kind), kind.Table())
	row := db.conn.QueryRowContext(ctx, query, id)

	media := &models.Media{}
	if err := scanMedia(row, kind, media); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, ErrMediaNotFound)
		}
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	return media, nil
}

func (db *DB) getMediaBySourceID(ctx context.Context, kind models.MediaKind, source, sourceID string) (*models.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE source = ? AND source_id = ?`,
		mediaSelectColumns(kind), kind.Table())
	row := db.conn.QueryRowContext(ctx, query, source, sourceID)

	media := &models.Media{}
	if err := scanMedia(row, kind, media); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s/%s: %w", kind, source, sourceID, ErrMediaNotFound)
		}
		return nil, fmt.Errorf("failed to get %s by source id: %w", kind, err)
	}
	return media, nil
}

// mediaExists reports whether a row exists in kind's table for id.
func (db *DB) mediaExists(ctx context.Context, kind models.MediaKind, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = ?)`, kind.Table())
	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s %d: %w", kind, id, err)
	}
	return exists, nil
}
