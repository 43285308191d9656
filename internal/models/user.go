// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import "time"

// User is an identity record. Created on first successful external-auth
// verification; Subject is the external provider's stable subject id.
// Everything else references users by ID and never owns them.
type User struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"-"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Created   time.Time `json:"created"`
}

// UserWithFriendStatus annotates a user with the current friendship status
// relative to a viewer. Status is nil when no link exists (or the latest
// link is an unfriend, which returns the pair to none).
type UserWithFriendStatus struct {
	User
	FriendStatus *FriendStatus `json:"friend_status,omitempty"`
	// RequestedByViewer is set only while FriendStatus is "requested" and
	// tells the caller which side initiated the open request.
	RequestedByViewer *bool `json:"requested_by_viewer,omitempty"`
}
