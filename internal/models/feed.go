// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

// FeedEntry is one item of the friend activity feed: a latest-state
// consumption event from an accepted friend (or the viewer), joined to the
// actor and the media, tagged with whole hours elapsed since the event.
// The feed sorts by ElapsedHours ascending, so the most recent activity
// comes first.
type FeedEntry struct {
	User         User             `json:"user"`
	Event        ConsumptionEvent `json:"event"`
	Media        Media            `json:"media"`
	ElapsedHours int64            `json:"elapsed_hours"`
}
