// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import "errors"

// Sentinel errors for entities a caller referenced but that do not exist.
// These surface as NOT_FOUND at the API edge; no write is performed when one
// is returned.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMediaNotFound = errors.New("media not found")
)

// IsNotFound reports whether err is one of the store's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrMediaNotFound)
}
