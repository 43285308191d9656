// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

/*
schema.go - Database Schema Management

Tables:
  - users: identity records, unique by external-auth subject
  - books / movies / tv_shows: canonical media records, unique by
    (source, source_id); denormalized from the provider at creation time
    and never updated
  - consumption_events: append-only consumption log
  - friend_events: append-only friend-link log
  - recommendation_events: append-only recommendation log

Every row id comes from a monotonic sequence. The id is the deterministic
secondary tiebreak for latest-state resolution: when two rows of a dedup key
share a timestamp, the later insert wins. The UNIQUE(source, source_id)
constraints back the concurrent media upsert (insert ON CONFLICT DO NOTHING,
then re-read).
*/
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %s: %w", query, err)
		}
	}
	return nil
}

func schemaQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_users_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_books_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_movies_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_tv_shows_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_consumption_events_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_friend_events_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_recommendation_events_id START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_users_id'),
			subject TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS books (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_books_id'),
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			title TEXT NOT NULL,
			author_name TEXT,
			publish_year INTEGER,
			cover_url TEXT,
			created TIMESTAMP NOT NULL,
			UNIQUE (source, source_id)
		)`,

		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_movies_id'),
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			title TEXT NOT NULL,
			release_date TIMESTAMP,
			poster_url TEXT,
			created TIMESTAMP NOT NULL,
			UNIQUE (source, source_id)
		)`,

		`CREATE TABLE IF NOT EXISTS tv_shows (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_tv_shows_id'),
			source TEXT NOT NULL,
			source_id TEXT NOT NULL,
			title TEXT NOT NULL,
			first_air_date TIMESTAMP,
			networks TEXT,
			poster_url TEXT,
			created TIMESTAMP NOT NULL,
			UNIQUE (source, source_id)
		)`,

		`CREATE TABLE IF NOT EXISTS consumption_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_consumption_events_id'),
			user_id BIGINT NOT NULL,
			media_kind TEXT NOT NULL,
			media_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			created TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS friend_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_friend_events_id'),
			requester_id BIGINT NOT NULL,
			requested_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			created TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS recommendation_events (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_recommendation_events_id'),
			recommender_id BIGINT NOT NULL,
			recommended_id BIGINT NOT NULL,
			media_kind TEXT NOT NULL,
			media_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			created TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_consumption_user_media
			ON consumption_events (user_id, media_kind, media_id, created)`,
		`CREATE INDEX IF NOT EXISTS idx_friend_pair
			ON friend_events (requester_id, requested_id, created)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_recipient
			ON recommendation_events (recommended_id, media_kind, media_id, created)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	}
}
