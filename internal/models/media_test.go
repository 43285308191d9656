// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package models

import "testing"

func TestParseMediaKind(t *testing.T) {
	tests := []struct {
		input   string
		want    MediaKind
		wantErr bool
	}{
		{"book", MediaKindBook, false},
		{"movie", MediaKindMovie, false},
		{"tv", MediaKindTV, false},
		{"podcast", "", true},
		{"Book", "", true},
		{"", "", true},
		{"book ", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMediaKind(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMediaKind(%q): expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMediaKind(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMediaKind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMediaKindTable(t *testing.T) {
	tests := []struct {
		kind MediaKind
		want string
	}{
		{MediaKindBook, "books"},
		{MediaKindMovie, "movies"},
		{MediaKindTV, "tv_shows"},
	}

	for _, tt := range tests {
		if got := tt.kind.Table(); got != tt.want {
			t.Errorf("%q.Table() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMediaKindTablePanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid kind")
		}
	}()
	_ = MediaKind("vinyl").Table()
}

func TestParseConsumptionStatus(t *testing.T) {
	valid := []string{"want to consume", "consuming", "finished", "abandoned"}
	for _, s := range valid {
		if _, err := ParseConsumptionStatus(s); err != nil {
			t.Errorf("ParseConsumptionStatus(%q): unexpected error: %v", s, err)
		}
	}

	invalid := []string{"", "reading", "FINISHED", "want-to-consume"}
	for _, s := range invalid {
		if _, err := ParseConsumptionStatus(s); err == nil {
			t.Errorf("ParseConsumptionStatus(%q): expected error", s)
		}
	}
}

func TestParseFriendStatus(t *testing.T) {
	valid := []string{"requested", "accepted", "rejected", "unfriend"}
	for _, s := range valid {
		if _, err := ParseFriendStatus(s); err != nil {
			t.Errorf("ParseFriendStatus(%q): unexpected error: %v", s, err)
		}
	}

	if _, err := ParseFriendStatus("blocked"); err == nil {
		t.Error("ParseFriendStatus(\"blocked\"): expected error")
	}
}

func TestParseRecommendationStatus(t *testing.T) {
	for _, s := range []string{"pending", "ignored"} {
		if _, err := ParseRecommendationStatus(s); err != nil {
			t.Errorf("ParseRecommendationStatus(%q): unexpected error: %v", s, err)
		}
	}

	if _, err := ParseRecommendationStatus("accepted"); err == nil {
		t.Error("ParseRecommendationStatus(\"accepted\"): expected error")
	}
}
