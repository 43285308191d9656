// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"testing"

	"github.com/goodtimes-app/goodtimes/internal/models"
)

func TestConsumptionForLatestStateWins(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice", "alice@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-1", "The Left Hand of Darkness")

	logConsumption(t, db, user.ID, book, models.StatusWantToConsume, ts(0))
	logConsumption(t, db, user.ID, book, models.StatusFinished, ts(10))

	records, err := db.ConsumptionFor(ctx, user.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Event.Status != models.StatusFinished {
		t.Errorf("Expected latest status %q, got %q", models.StatusFinished, records[0].Event.Status)
	}
	if records[0].Media.Title != "The Left Hand of Darkness" {
		t.Errorf("Expected joined media title, got %q", records[0].Media.Title)
	}
}

func TestConsumptionForTimestampTieBrokenByEventID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice", "alice@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-2", "A Wizard of Earthsea")

	// Two events with the exact same timestamp: the later insert (greater
	// sequence id) must win deterministically.
	logConsumption(t, db, user.ID, book, models.StatusConsuming, ts(0))
	logConsumption(t, db, user.ID, book, models.StatusAbandoned, ts(0))

	records, err := db.ConsumptionFor(ctx, user.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Event.Status != models.StatusAbandoned {
		t.Errorf("Expected later insert to win the tie, got %q", records[0].Event.Status)
	}
}

func TestConsumptionForRepeatedStatusIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice", "alice@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-3", "The Tombs of Atuan")

	logConsumption(t, db, user.ID, book, models.StatusFinished, ts(0))
	logConsumption(t, db, user.ID, book, models.StatusFinished, ts(5))
	logConsumption(t, db, user.ID, book, models.StatusFinished, ts(10))

	records, err := db.ConsumptionFor(ctx, user.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record despite repeated logging, got %d", len(records))
	}
	if records[0].Event.Status != models.StatusFinished {
		t.Errorf("Expected status %q, got %q", models.StatusFinished, records[0].Event.Status)
	}
}

func TestConsumptionForIsolatedByUserAndKind(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-4", "Tehanu")
	movie := seedMedia(t, db, models.MediaKindMovie, "550", "Fight Club")

	logConsumption(t, db, alice.ID, book, models.StatusConsuming, ts(0))
	logConsumption(t, db, alice.ID, movie, models.StatusFinished, ts(1))
	logConsumption(t, db, bob.ID, book, models.StatusAbandoned, ts(2))

	records, err := db.ConsumptionFor(ctx, alice.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected only alice's book record, got %d records", len(records))
	}
	if records[0].Event.UserID != alice.ID || records[0].Event.Status != models.StatusConsuming {
		t.Errorf("Got unexpected record: user %d status %q",
			records[0].Event.UserID, records[0].Event.Status)
	}
}

func TestConsumptionForEmptyLog(t *testing.T) {
	db := setupTestDB(t)

	user := seedUser(t, db, "alice", "alice@example.com")

	records, err := db.ConsumptionFor(context.Background(), user.ID, models.MediaKindTV)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty result for empty log, got %d records", len(records))
	}
}

func TestConsumptionForOrderedMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, db, "alice", "alice@example.com")
	older := seedMedia(t, db, models.MediaKindMovie, "601", "E.T.")
	newer := seedMedia(t, db, models.MediaKindMovie, "602", "Arrival")

	logConsumption(t, db, user.ID, older, models.StatusFinished, ts(0))
	logConsumption(t, db, user.ID, newer, models.StatusFinished, ts(30))

	records, err := db.ConsumptionFor(ctx, user.ID, models.MediaKindMovie)
	if err != nil {
		t.Fatalf("ConsumptionFor failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Media.Title != "Arrival" || records[1].Media.Title != "E.T." {
		t.Errorf("Expected most recent first, got %q then %q",
			records[0].Media.Title, records[1].Media.Title)
	}
}

func TestOverlapRequiresBothUsersCurrentState(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-5", "The Dispossessed")

	// Only alice has finished it: no overlap yet.
	logConsumption(t, db, alice.ID, book, models.StatusFinished, ts(0))

	media, err := db.Overlap(ctx, alice.ID, bob.ID, models.MediaKindBook, models.StatusFinished)
	if err != nil {
		t.Fatalf("Overlap failed: %v", err)
	}
	if len(media) != 0 {
		t.Fatalf("Expected no overlap with one participant, got %d", len(media))
	}

	// Bob finishes it too: the title overlaps.
	logConsumption(t, db, bob.ID, book, models.StatusFinished, ts(10))

	media, err = db.Overlap(ctx, alice.ID, bob.ID, models.MediaKindBook, models.StatusFinished)
	if err != nil {
		t.Fatalf("Overlap failed: %v", err)
	}
	if len(media) != 1 || media[0].Title != "The Dispossessed" {
		t.Fatalf("Expected one overlapping title, got %+v", media)
	}

	// Bob's newer event moves to a different status: the overlap dissolves,
	// because only latest state counts.
	logConsumption(t, db, bob.ID, book, models.StatusAbandoned, ts(20))

	media, err = db.Overlap(ctx, alice.ID, bob.ID, models.MediaKindBook, models.StatusFinished)
	if err != nil {
		t.Fatalf("Overlap failed: %v", err)
	}
	if len(media) != 0 {
		t.Errorf("Expected overlap to dissolve after status change, got %d", len(media))
	}
}

func TestOverlapExactStatusMatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	show := seedMedia(t, db, models.MediaKindTV, "1396", "Breaking Bad")

	// Alice finished, bob is mid-watch: similar interest, but not the same
	// current status, so no overlap for either status value.
	logConsumption(t, db, alice.ID, show, models.StatusFinished, ts(0))
	logConsumption(t, db, bob.ID, show, models.StatusConsuming, ts(1))

	for _, status := range []models.ConsumptionStatus{models.StatusFinished, models.StatusConsuming} {
		media, err := db.Overlap(ctx, alice.ID, bob.ID, models.MediaKindTV, status)
		if err != nil {
			t.Fatalf("Overlap(%s) failed: %v", status, err)
		}
		if len(media) != 0 {
			t.Errorf("Expected no overlap for status %q, got %d", status, len(media))
		}
	}
}

func TestOverlapSymmetric(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	movie := seedMedia(t, db, models.MediaKindMovie, "680", "Pulp Fiction")

	logConsumption(t, db, alice.ID, movie, models.StatusWantToConsume, ts(0))
	logConsumption(t, db, bob.ID, movie, models.StatusWantToConsume, ts(1))

	forward, err := db.Overlap(ctx, alice.ID, bob.ID, models.MediaKindMovie, models.StatusWantToConsume)
	if err != nil {
		t.Fatalf("Overlap failed: %v", err)
	}
	reverse, err := db.Overlap(ctx, bob.ID, alice.ID, models.MediaKindMovie, models.StatusWantToConsume)
	if err != nil {
		t.Fatalf("Overlap failed: %v", err)
	}
	if len(forward) != 1 || len(reverse) != 1 || forward[0].ID != reverse[0].ID {
		t.Errorf("Expected symmetric overlap, got %+v and %+v", forward, reverse)
	}
}
