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

const userColumns = `id, subject, username, email, first_name, last_name, avatar_url, created`

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Subject, &u.Username, &u.Email,
		&u.FirstName, &u.LastName, &u.AvatarURL, &u.Created)
}

// ProvisionUser finds the user for an external-auth subject, creating the
// identity record on first sight. Profile fields are taken from the verified
// token only at creation time; an existing row is returned untouched.
// Safe under concurrent first logins of the same subject: the UNIQUE(subject)
// constraint makes the insert fallible, and on conflict the existing row is
// re-read.
func (db *DB) ProvisionUser(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if existing, err := db.GetUserBySubject(ctx, user.Subject); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	created := user.Created
	if created.IsZero() {
		created = now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (subject, username, email, first_name, last_name, avatar_url, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subject) DO NOTHING`,
		user.Subject, user.Username, user.Email, user.FirstName, user.LastName, user.AvatarURL, created,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	provisioned, err := db.GetUserBySubject(ctx, user.Subject)
	if err != nil {
		return nil, err
	}
	if provisioned.Created.Equal(created) {
		logging.Info().Int64("user_id", provisioned.ID).Msg("Provisioned new user")
	}
	return provisioned, nil
}

// GetUserByID fetches one user, or ErrUserNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user := &models.User{}
	if err := scanUser(row, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserBySubject fetches one user by external-auth subject, or
// ErrUserNotFound.
func (db *DB) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE subject = ?`, subject)

	user := &models.User{}
	if err := scanUser(row, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subject %s: %w", subject, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by subject: %w", err)
	}
	return user, nil
}

// userExists reports whether a user row exists for id.
func (db *DB) userExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return exists, nil
}
