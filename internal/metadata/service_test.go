// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

func newTestService(t *testing.T, cfg config.MetadataConfig) *Service {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 2
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = 1000
	}

	svc, err := New(&cfg)
	if err != nil {
		t.Fatalf("Failed to create metadata service: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Failed to close metadata service: %v", err)
		}
	})
	return svc
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"dune", "Dune"},
		{"THE LEFT HAND OF DARKNESS", "The Left Hand Of Darkness"},
		{"a wizard of earthsea", "A Wizard Of Earthsea"},
		{"catch-22", "Catch-22"},
		{"2001: a space odyssey", "2001: A Space Odyssey"},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPublishYear(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1969", 1969, true},
		{"1969-03", 1969, true},
		{"1969-03-14", 1969, true},
		{"19**", 19, true},
		{"", 0, false},
		{"unknown", 0, false},
	}
	for _, tt := range tests {
		got, ok := publishYear(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("publishYear(%q) = (%d, %v), want (%d, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSearchBooksNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != `intitle:"left hand"` {
			t.Errorf("Unexpected query %q", got)
		}
		fmt.Fprint(w, `{"items": [{
			"id": "vol-1",
			"volumeInfo": {
				"title": "the left hand of darkness",
				"authors": ["ursula k. le guin", "someone else"],
				"publishedDate": "1969-03-01",
				"imageLinks": {"thumbnail": "https://books.example.com/cover.jpg"}
			}
		}, {
			"id": "vol-2",
			"volumeInfo": {"title": "LEFT HAND"}
		}]}`)
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{GoogleBooksURL: server.URL})

	results, err := svc.Search(context.Background(), models.MediaKindBook, "left hand")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Source != SourceGoogleBooks || first.SourceID != "vol-1" {
		t.Errorf("Wrong identity: %+v", first)
	}
	if first.Title != "The Left Hand Of Darkness" {
		t.Errorf("Expected title-cased title, got %q", first.Title)
	}
	if first.AuthorName == nil || *first.AuthorName != "Ursula K. Le Guin" {
		t.Errorf("Expected first author title-cased, got %v", first.AuthorName)
	}
	if first.PublishYear == nil || *first.PublishYear != 1969 {
		t.Errorf("Expected publish year 1969, got %v", first.PublishYear)
	}
	if first.CoverURL == nil || *first.CoverURL != "https://books.example.com/cover.jpg" {
		t.Errorf("Expected thumbnail cover, got %v", first.CoverURL)
	}

	second := results[1]
	if second.AuthorName != nil || second.PublishYear != nil || second.CoverURL != nil {
		t.Errorf("Expected bare volume to normalize with nil optionals: %+v", second)
	}
}

func TestSearchMoviesNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("include_adult"); got != "false" {
			t.Errorf("Expected include_adult=false, got %q", got)
		}
		fmt.Fprint(w, `{"results": [{
			"id": 27205,
			"title": "inception",
			"release_date": "2010-07-16",
			"poster_path": "/inception.jpg"
		}, {
			"id": 27206,
			"title": "INCEPTION: THE COBOL JOB",
			"release_date": ""
		}]}`)
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{
		TMDBURL:      server.URL,
		TMDBImageURL: "https://img.example.com/w185",
	})

	results, err := svc.Search(context.Background(), models.MediaKindMovie, "inception")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Source != SourceTMDB || first.SourceID != "27205" {
		t.Errorf("Wrong identity: %+v", first)
	}
	if first.Title != "Inception" {
		t.Errorf("Expected title-cased title, got %q", first.Title)
	}
	if first.ReleaseDate == nil || first.ReleaseDate.Format("2006-01-02") != "2010-07-16" {
		t.Errorf("Expected parsed release date, got %v", first.ReleaseDate)
	}
	if first.CoverURL == nil || *first.CoverURL != "https://img.example.com/w185/inception.jpg" {
		t.Errorf("Expected poster URL joined with image base, got %v", first.CoverURL)
	}
	if results[1].ReleaseDate != nil {
		t.Errorf("Expected nil release date for empty string, got %v", results[1].ReleaseDate)
	}
}

func TestSearchTVEnrichesNetworks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			fmt.Fprint(w, `{"results": [{
				"id": 1396,
				"name": "Breaking Bad",
				"first_air_date": "2008-01-20",
				"poster_path": "/bb.jpg"
			}]}`)
		case "/tv/1396":
			fmt.Fprint(w, `{"networks": [{"name": "AMC"}, {"name": "Netflix"}]}`)
		default:
			t.Errorf("Unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{TMDBURL: server.URL})

	results, err := svc.Search(context.Background(), models.MediaKindTV, "breaking bad")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	show := results[0]
	if show.Title != "Breaking Bad" {
		t.Errorf("Expected show title kept as-is, got %q", show.Title)
	}
	if show.Networks == nil || *show.Networks != "AMC, Netflix" {
		t.Errorf("Expected joined networks, got %v", show.Networks)
	}
	if show.FirstAirDate == nil || show.FirstAirDate.Format("2006-01-02") != "2008-01-20" {
		t.Errorf("Expected parsed first air date, got %v", show.FirstAirDate)
	}
}

func TestSearchTVNetworkFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			fmt.Fprint(w, `{"results": [{"id": 99, "name": "Obscure Show"}]}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{TMDBURL: server.URL})

	results, err := svc.Search(context.Background(), models.MediaKindTV, "obscure")
	if err != nil {
		t.Fatalf("Expected degraded success, got error: %v", err)
	}
	if len(results) != 1 || results[0].Networks != nil {
		t.Errorf("Expected result without networks, got %+v", results)
	}
}

func TestSearchCachesResults(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"items": [{"id": "vol-1", "volumeInfo": {"title": "dune"}}]}`)
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{
		GoogleBooksURL: server.URL,
		CacheTTL:       time.Minute,
	})

	for i := 0; i < 3; i++ {
		results, err := svc.Search(context.Background(), models.MediaKindBook, "dune")
		if err != nil {
			t.Fatalf("Search %d failed: %v", i, err)
		}
		if len(results) != 1 || results[0].Title != "Dune" {
			t.Fatalf("Search %d returned %+v", i, results)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call for 3 searches, got %d", got)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newTestService(t, config.MetadataConfig{
		GoogleBooksURL: server.URL,
		RetryAttempts:  3,
	})

	_, err := svc.Search(context.Background(), models.MediaKindBook, "dune")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestSearchInvalidKindIsNotUpstream(t *testing.T) {
	svc := newTestService(t, config.MetadataConfig{})

	// An invalid kind is a caller bug, but the uniform error contract still
	// applies at this boundary; it must not panic.
	_, err := svc.Search(context.Background(), models.MediaKind("vinyl"), "abbey road")
	if err == nil {
		t.Fatal("Expected error for invalid kind")
	}
}
