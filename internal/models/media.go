// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import (
	"fmt"
	"time"
)

// MediaKind is the closed discriminator over the three media tables.
// Unknown kinds are rejected at parse time, before any storage lookup, so
// switches over MediaKind can be exhaustive.
type MediaKind string

const (
	MediaKindBook  MediaKind = "book"
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
)

// MediaKinds lists every valid kind, in the order the feed presents them.
func MediaKinds() []MediaKind {
	return []MediaKind{MediaKindBook, MediaKindMovie, MediaKindTV}
}

// ParseMediaKind validates a kind string drawn from a URL segment or request
// body. Returns a validation failure for anything outside {book, movie, tv}.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case MediaKindBook, MediaKindMovie, MediaKindTV:
		return MediaKind(s), nil
	default:
		return "", fmt.Errorf("unknown media kind %q: must be one of book, movie, tv", s)
	}
}

// String returns the kind as stored in event rows.
func (k MediaKind) String() string {
	return string(k)
}

// Table returns the media table backing this kind.
func (k MediaKind) Table() string {
	switch k {
	case MediaKindBook:
		return "books"
	case MediaKindMovie:
		return "movies"
	case MediaKindTV:
		return "tv_shows"
	default:
		// ParseMediaKind is the only constructor; this is unreachable for
		// validated kinds.
		panic(fmt.Sprintf("invalid media kind %q", string(k)))
	}
}

// Media is one canonical media record, deduplicated by (source, source_id).
// Rows are denormalized from the external provider at creation time and never
// updated afterwards. Kind-specific fields are nil for the other kinds:
// AuthorName/PublishYear for books, ReleaseDate for movies,
// FirstAirDate/Networks for TV.
type Media struct {
	ID       int64     `json:"id"`
	Kind     MediaKind `json:"kind"`
	Source   string    `json:"source"`
	SourceID string    `json:"source_id"`
	Title    string    `json:"title"`

	AuthorName   *string    `json:"author_name,omitempty"`
	PublishYear  *int       `json:"publish_year,omitempty"`
	ReleaseDate  *time.Time `json:"release_date,omitempty"`
	FirstAirDate *time.Time `json:"first_air_date,omitempty"`
	Networks     *string    `json:"networks,omitempty"`

	CoverURL *string   `json:"cover_url,omitempty"`
	Created  time.Time `json:"created"`
}
