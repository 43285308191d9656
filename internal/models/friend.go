// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import (
	"fmt"
	"time"
)

// FriendStatus is one state of the pairwise friendship machine:
// requested -> accepted | rejected, and accepted -> unfriend, which returns
// the pair to none for any future request.
type FriendStatus string

const (
	FriendRequested FriendStatus = "requested"
	FriendAccepted  FriendStatus = "accepted"
	FriendRejected  FriendStatus = "rejected"
	FriendUnfriend  FriendStatus = "unfriend"
)

// ParseFriendStatus validates a friend-link status string.
func ParseFriendStatus(s string) (FriendStatus, error) {
	switch FriendStatus(s) {
	case FriendRequested, FriendAccepted, FriendRejected, FriendUnfriend:
		return FriendStatus(s), nil
	default:
		return "", fmt.Errorf("unknown friend status %q: must be one of 'requested', 'accepted', 'rejected', 'unfriend'", s)
	}
}

// FriendEvent is one immutable row in the friend-link log. The log records
// direction (who asked whom) but the current relationship state is resolved
// per unordered pair: the row with the greatest (created, id) among all rows
// between the two users wins.
type FriendEvent struct {
	ID          int64        `json:"id"`
	RequesterID int64        `json:"requester_id"`
	RequestedID int64        `json:"requested_id"`
	Status      FriendStatus `json:"status"`
	Created     time.Time    `json:"created"`
}
