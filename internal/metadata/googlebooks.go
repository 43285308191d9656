// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goodtimes-app/goodtimes/internal/models"
)

const (
	// SourceGoogleBooks is the provenance tag stored on book records.
	SourceGoogleBooks = "google books api"

	defaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

	// googleBooksMaxResults is the provider's per-request ceiling.
	googleBooksMaxResults = 40
)

// googleBooksClient searches the Google Books volumes endpoint and
// normalizes results into Media records.
type googleBooksClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type googleBooksResponse struct {
	Items []googleBooksVolume `json:"items"`
}

type googleBooksVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		ImageLinks    *struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// searchByTitle runs an intitle query and returns normalized book records.
func (c *googleBooksClient) searchByTitle(ctx context.Context, title string) ([]models.Media, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("intitle:%q", title))
	params.Set("maxResults", strconv.Itoa(googleBooksMaxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build google books request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, fmt.Errorf("google books returned status %d", resp.StatusCode)
	}

	var body googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode google books response: %w", err)
	}

	books := make([]models.Media, 0, len(body.Items))
	for _, item := range body.Items {
		books = append(books, bookFromVolume(item))
	}
	return books, nil
}

// bookFromVolume normalizes one provider volume: title-cased title, first
// author only, publish year clipped from the (sometimes partial, sometimes
// asterisked) publishedDate, thumbnail as cover.
func bookFromVolume(v googleBooksVolume) models.Media {
	m := models.Media{
		Kind:     models.MediaKindBook,
		Source:   SourceGoogleBooks,
		SourceID: v.ID,
		Title:    titleCase(v.VolumeInfo.Title),
	}

	if len(v.VolumeInfo.Authors) > 0 {
		author := titleCase(v.VolumeInfo.Authors[0])
		m.AuthorName = &author
	}
	if year, ok := publishYear(v.VolumeInfo.PublishedDate); ok {
		m.PublishYear = &year
	}
	if v.VolumeInfo.ImageLinks != nil && v.VolumeInfo.ImageLinks.Thumbnail != "" {
		cover := v.VolumeInfo.ImageLinks.Thumbnail
		m.CoverURL = &cover
	}
	return m
}

// publishYear extracts the year from a publishedDate such as "1969",
// "1969-03", "1969-03-14" or the occasional "19**".
func publishYear(publishedDate string) (int, bool) {
	if publishedDate == "" {
		return 0, false
	}
	raw := strings.SplitN(publishedDate, "-", 2)[0]
	raw = strings.ReplaceAll(raw, "*", "")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return year, true
}
