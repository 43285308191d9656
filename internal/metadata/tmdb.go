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
	"time"

	"github.com/goccy/go-json"

	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

const (
	// SourceTMDB is the provenance tag stored on movie and TV records.
	SourceTMDB = "tmdb"

	defaultTMDBURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/w185"

	tmdbDateLayout = "2006-01-02"
)

// tmdbClient searches the TMDB API and normalizes results into Media
// records. TV results are enriched with the show's broadcast networks via a
// per-show detail lookup.
type tmdbClient struct {
	baseURL    string
	imageURL   string
	apiKey     string
	httpClient *http.Client
}

type tmdbSearchResponse struct {
	Results []tmdbResult `json:"results"`
}

type tmdbResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`          // movies
	Name         string `json:"name"`           // tv
	ReleaseDate  string `json:"release_date"`   // movies
	FirstAirDate string `json:"first_air_date"` // tv
	PosterPath   string `json:"poster_path"`
}

type tmdbShowDetail struct {
	Networks []struct {
		Name string `json:"name"`
	} `json:"networks"`
}

func (c *tmdbClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build tmdb request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return fmt.Errorf("tmdb returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode tmdb response for %s: %w", path, err)
	}
	return nil
}

// searchMovies returns normalized movie records for a title query.
func (c *tmdbClient) searchMovies(ctx context.Context, title string) ([]models.Media, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")

	var body tmdbSearchResponse
	if err := c.get(ctx, "/search/movie", params, &body); err != nil {
		return nil, err
	}

	movies := make([]models.Media, 0, len(body.Results))
	for _, r := range body.Results {
		m := models.Media{
			Kind:     models.MediaKindMovie,
			Source:   SourceTMDB,
			SourceID: strconv.FormatInt(r.ID, 10),
			Title:    titleCase(r.Title),
		}
		if d, err := time.Parse(tmdbDateLayout, r.ReleaseDate); err == nil {
			m.ReleaseDate = &d
		}
		if r.PosterPath != "" {
			poster := c.imageURL + r.PosterPath
			m.CoverURL = &poster
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// searchTV returns normalized TV records for a title query. Show titles keep
// the provider's casing; each result is enriched with its networks, and a
// failed enrichment degrades to a record without networks rather than
// failing the whole search.
func (c *tmdbClient) searchTV(ctx context.Context, title string) ([]models.Media, error) {
	params := url.Values{}
	params.Set("query", title)
	params.Set("include_adult", "false")

	var body tmdbSearchResponse
	if err := c.get(ctx, "/search/tv", params, &body); err != nil {
		return nil, err
	}

	shows := make([]models.Media, 0, len(body.Results))
	for _, r := range body.Results {
		m := models.Media{
			Kind:     models.MediaKindTV,
			Source:   SourceTMDB,
			SourceID: strconv.FormatInt(r.ID, 10),
			Title:    r.Name,
		}
		if d, err := time.Parse(tmdbDateLayout, r.FirstAirDate); err == nil {
			m.FirstAirDate = &d
		}
		if r.PosterPath != "" {
			poster := c.imageURL + r.PosterPath
			m.CoverURL = &poster
		}
		if networks, err := c.showNetworks(ctx, r.ID); err != nil {
			logging.Warn().Err(err).Int64("tmdb_id", r.ID).Msg("TV network enrichment failed")
		} else if networks != "" {
			m.Networks = &networks
		}
		shows = append(shows, m)
	}
	return shows, nil
}

// showNetworks fetches a show's broadcast networks, comma-joined.
func (c *tmdbClient) showNetworks(ctx context.Context, id int64) (string, error) {
	var detail tmdbShowDetail
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), url.Values{}, &detail); err != nil {
		return "", err
	}
	names := make([]string, 0, len(detail.Networks))
	for _, n := range detail.Networks {
		names = append(names, n.Name)
	}
	return strings.Join(names, ", "), nil
}
