// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{
		Path:         ":memory:",
		Threads:      2,
		MaxMemory:    "256MB",
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

func seedUser(t *testing.T, db *DB, username, email string) *models.User {
	t.Helper()

	user, err := db.ProvisionUser(context.Background(), &models.User{
		Subject:  "sub-" + username,
		Username: username,
		Email:    email,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func seedMedia(t *testing.T, db *DB, kind models.MediaKind, sourceID, title string) *models.Media {
	t.Helper()

	source := map[models.MediaKind]string{
		models.MediaKindBook:  "googlebooks",
		models.MediaKindMovie: "tmdb",
		models.MediaKindTV:    "tmdb",
	}[kind]

	media, err := db.UpsertMedia(context.Background(), &models.Media{
		Kind:     kind,
		Source:   source,
		SourceID: sourceID,
		Title:    title,
	})
	if err != nil {
		t.Fatalf("Failed to seed %s %q: %v", kind, title, err)
	}
	return media
}

func logConsumption(t *testing.T, db *DB, userID int64, media *models.Media, status models.ConsumptionStatus, created time.Time) *models.ConsumptionEvent {
	t.Helper()

	event := &models.ConsumptionEvent{
		UserID:    userID,
		MediaKind: media.Kind,
		MediaID:   media.ID,
		Status:    status,
		Created:   created,
	}
	if err := db.InsertConsumptionEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to log consumption event: %v", err)
	}
	return event
}

func logFriend(t *testing.T, db *DB, requesterID, requestedID int64, status models.FriendStatus, created time.Time) {
	t.Helper()

	event := &models.FriendEvent{
		RequesterID: requesterID,
		RequestedID: requestedID,
		Status:      status,
		Created:     created,
	}
	if err := db.InsertFriendEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to log friend event: %v", err)
	}
}

func logRecommendation(t *testing.T, db *DB, recommenderID, recommendedID int64, media *models.Media, status models.RecommendationStatus, created time.Time) {
	t.Helper()

	event := &models.RecommendationEvent{
		RecommenderID: recommenderID,
		RecommendedID: recommendedID,
		MediaKind:     media.Kind,
		MediaID:       media.ID,
		Status:        status,
		Created:       created,
	}
	if err := db.InsertRecommendationEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to log recommendation event: %v", err)
	}
}

// baseTime is an arbitrary fixed origin so tests can construct deterministic
// event timelines with ts(n) = baseTime + n minutes.
var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func ts(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestProvisionUserIdempotent(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.ProvisionUser(context.Background(), &models.User{
		Subject:  "oidc|abc123",
		Username: "alice",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("First provision failed: %v", err)
	}

	second, err := db.ProvisionUser(context.Background(), &models.User{
		Subject:  "oidc|abc123",
		Username: "alice-renamed",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Second provision failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected same user id for same subject, got %d and %d", first.ID, second.ID)
	}
	if second.Username != "alice" {
		t.Errorf("Expected re-provision to keep original profile, got username %q", second.Username)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUserByID(context.Background(), 9999)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if !IsNotFound(err) {
		t.Errorf("Expected IsNotFound to report true for %v", err)
	}
}

func TestUpsertMediaIdempotent(t *testing.T) {
	db := setupTestDB(t)

	first := seedMedia(t, db, models.MediaKindBook, "vol-1", "The Dispossessed")
	second := seedMedia(t, db, models.MediaKindBook, "vol-1", "The Dispossessed (reissue)")

	if first.ID != second.ID {
		t.Errorf("Expected same media id for same source identity, got %d and %d", first.ID, second.ID)
	}
	if second.Title != "The Dispossessed" {
		t.Errorf("Expected upsert to keep original title, got %q", second.Title)
	}
}

func TestUpsertMediaDistinctPerKind(t *testing.T) {
	db := setupTestDB(t)

	// The same provider id may identify a movie and a TV show; kinds live in
	// separate tables so neither collides with the other.
	movie := seedMedia(t, db, models.MediaKindMovie, "603", "The Matrix")
	show := seedMedia(t, db, models.MediaKindTV, "603", "The Matrix (series)")

	got, err := db.GetMediaByID(context.Background(), models.MediaKindMovie, movie.ID)
	if err != nil {
		t.Fatalf("GetMediaByID failed: %v", err)
	}
	if got.Title != "The Matrix" {
		t.Errorf("Expected movie title, got %q", got.Title)
	}

	gotShow, err := db.GetMediaByID(context.Background(), models.MediaKindTV, show.ID)
	if err != nil {
		t.Fatalf("GetMediaByID failed: %v", err)
	}
	if gotShow.Title != "The Matrix (series)" {
		t.Errorf("Expected show title, got %q", gotShow.Title)
	}
}

func TestUpsertMediaConcurrent(t *testing.T) {
	db := setupTestDB(t)

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := db.UpsertMedia(context.Background(), &models.Media{
				Kind:     models.MediaKindMovie,
				Source:   "tmdb",
				SourceID: "27205",
				Title:    "Inception",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = m.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Worker %d failed: %v", i, err)
		}
	}
	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Errorf("Worker %d resolved media id %d, want %d", i, ids[i], ids[0])
		}
	}
}

func TestInsertConsumptionEventUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	media := seedMedia(t, db, models.MediaKindBook, "vol-9", "Piranesi")

	err := db.InsertConsumptionEvent(context.Background(), &models.ConsumptionEvent{
		UserID:    424242,
		MediaKind: media.Kind,
		MediaID:   media.ID,
		Status:    models.StatusFinished,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestInsertConsumptionEventUnknownMedia(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")

	err := db.InsertConsumptionEvent(context.Background(), &models.ConsumptionEvent{
		UserID:    user.ID,
		MediaKind: models.MediaKindBook,
		MediaID:   424242,
		Status:    models.StatusFinished,
	})
	if !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("Expected ErrMediaNotFound, got %v", err)
	}
}

func TestInsertFriendEventUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")

	err := db.InsertFriendEvent(context.Background(), &models.FriendEvent{
		RequesterID: user.ID,
		RequestedID: 424242,
		Status:      models.FriendRequested,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestEventIDsMonotonic(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", "alice@example.com")
	media := seedMedia(t, db, models.MediaKindBook, "vol-2", "Ancillary Justice")

	var prev int64
	for i := 0; i < 5; i++ {
		e := logConsumption(t, db, user.ID, media, models.StatusConsuming, ts(i))
		if e.ID <= prev {
			t.Fatalf("Event %d got id %d, expected greater than %d", i, e.ID, prev)
		}
		prev = e.ID
	}
}
