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

func TestRecommendationsToPendingOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-1", "Annihilation")
	other := seedMedia(t, db, models.MediaKindBook, "vol-2", "Authority")

	logRecommendation(t, db, alice.ID, bob.ID, book, models.RecommendationPending, ts(0))
	logRecommendation(t, db, alice.ID, bob.ID, other, models.RecommendationPending, ts(1))
	// Bob dismisses one of them.
	logRecommendation(t, db, alice.ID, bob.ID, other, models.RecommendationIgnored, ts(2))

	recs, err := db.RecommendationsTo(ctx, bob.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("RecommendationsTo failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 pending recommendation, got %d", len(recs))
	}
	if recs[0].Media.Title != "Annihilation" {
		t.Errorf("Expected the still-pending title, got %q", recs[0].Media.Title)
	}
	if recs[0].Recommender.ID != alice.ID {
		t.Errorf("Expected recommender alice, got user %d", recs[0].Recommender.ID)
	}
}

func TestRecommendationsToDedupsPerMedia(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	carol := seedUser(t, db, "carol", "carol@example.com")
	movie := seedMedia(t, db, models.MediaKindMovie, "155", "The Dark Knight")

	// Two friends recommend the same title; only the most recent thread
	// surfaces, attributed to its sender.
	logRecommendation(t, db, alice.ID, bob.ID, movie, models.RecommendationPending, ts(0))
	logRecommendation(t, db, carol.ID, bob.ID, movie, models.RecommendationPending, ts(5))

	recs, err := db.RecommendationsTo(ctx, bob.ID, models.MediaKindMovie)
	if err != nil {
		t.Fatalf("RecommendationsTo failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Expected 1 deduped recommendation, got %d", len(recs))
	}
	if recs[0].Recommender.ID != carol.ID {
		t.Errorf("Expected the most recent sender carol, got user %d", recs[0].Recommender.ID)
	}
}

func TestRecommendationsToRecipientStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	seen := seedMedia(t, db, models.MediaKindMovie, "680", "Pulp Fiction")
	unseen := seedMedia(t, db, models.MediaKindMovie, "550", "Fight Club")

	logRecommendation(t, db, alice.ID, bob.ID, seen, models.RecommendationPending, ts(0))
	logRecommendation(t, db, alice.ID, bob.ID, unseen, models.RecommendationPending, ts(1))
	logConsumption(t, db, bob.ID, seen, models.StatusFinished, ts(2))

	recs, err := db.RecommendationsTo(ctx, bob.ID, models.MediaKindMovie)
	if err != nil {
		t.Fatalf("RecommendationsTo failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(recs))
	}

	byTitle := map[string]models.IncomingRecommendation{}
	for _, r := range recs {
		byTitle[r.Media.Title] = r
	}

	if got := byTitle["Pulp Fiction"].RecipientStatus; got == nil || *got != models.StatusFinished {
		t.Errorf("Expected recipient status finished for seen title, got %v", got)
	}
	if got := byTitle["Fight Club"].RecipientStatus; got != nil {
		t.Errorf("Expected nil recipient status for never-logged title, got %q", *got)
	}
}

func TestRecommendationsBySeesOwnSends(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	carol := seedUser(t, db, "carol", "carol@example.com")
	show := seedMedia(t, db, models.MediaKindTV, "1396", "Breaking Bad")

	logRecommendation(t, db, alice.ID, bob.ID, show, models.RecommendationPending, ts(0))
	logRecommendation(t, db, alice.ID, carol.ID, show, models.RecommendationPending, ts(1))
	// Carol's copy of the thread was dismissed; alice still sees it, with
	// its current status.
	logRecommendation(t, db, alice.ID, carol.ID, show, models.RecommendationIgnored, ts(2))

	recs, err := db.RecommendationsBy(ctx, alice.ID, models.MediaKindTV)
	if err != nil {
		t.Fatalf("RecommendationsBy failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 outgoing threads, got %d", len(recs))
	}

	byRecipient := map[string]models.OutgoingRecommendation{}
	for _, r := range recs {
		byRecipient[r.Recipient.Username] = r
	}
	if byRecipient["bob"].Event.Status != models.RecommendationPending {
		t.Errorf("Expected bob's thread pending, got %q", byRecipient["bob"].Event.Status)
	}
	if byRecipient["carol"].Event.Status != models.RecommendationIgnored {
		t.Errorf("Expected carol's thread ignored, got %q", byRecipient["carol"].Event.Status)
	}
}

func TestInsertRecommendationDefaultsToPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	book := seedMedia(t, db, models.MediaKindBook, "vol-3", "Acceptance")

	event := &models.RecommendationEvent{
		RecommenderID: alice.ID,
		RecommendedID: bob.ID,
		MediaKind:     book.Kind,
		MediaID:       book.ID,
	}
	if err := db.InsertRecommendationEvent(ctx, event); err != nil {
		t.Fatalf("InsertRecommendationEvent failed: %v", err)
	}
	if event.Status != models.RecommendationPending {
		t.Errorf("Expected default status pending, got %q", event.Status)
	}

	recs, err := db.RecommendationsTo(ctx, bob.ID, models.MediaKindBook)
	if err != nil {
		t.Fatalf("RecommendationsTo failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("Expected the defaulted event to surface as pending, got %d", len(recs))
	}
}
