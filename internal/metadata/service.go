// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

// Package metadata looks up media records from external providers: Google
// Books for books, TMDB for movies and TV. Every lookup goes through a
// client-side rate limiter, bounded retry with exponential backoff, and a
// per-provider circuit breaker; successful results are cached in BadgerDB
// with a TTL. Provider failures surface uniformly as ErrUpstreamUnavailable.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// ErrUpstreamUnavailable reports that a provider could not serve the lookup
// after retries, or that its circuit is open.
var ErrUpstreamUnavailable = errors.New("metadata provider unavailable")

// Service is the metadata lookup facade used by the search endpoint.
type Service struct {
	cfg *config.MetadataConfig

	books *googleBooksClient
	tmdb  *tmdbClient

	breakers map[string]*gobreaker.CircuitBreaker[[]models.Media]
	limiter  *rate.Limiter
	cache    *cache
}

// New builds the service from configuration. Empty provider URLs fall back
// to the public endpoints; an empty cache path runs the cache in memory.
func New(cfg *config.MetadataConfig) (*Service, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	booksURL := cfg.GoogleBooksURL
	if booksURL == "" {
		booksURL = defaultGoogleBooksURL
	}
	tmdbURL := cfg.TMDBURL
	if tmdbURL == "" {
		tmdbURL = defaultTMDBURL
	}
	imageURL := cfg.TMDBImageURL
	if imageURL == "" {
		imageURL = defaultTMDBImageURL
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	c, err := newCache(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg: cfg,
		books: &googleBooksClient{
			baseURL:    booksURL,
			apiKey:     cfg.GoogleBooksAPIKey,
			httpClient: httpClient,
		},
		tmdb: &tmdbClient{
			baseURL:    tmdbURL,
			imageURL:   imageURL,
			apiKey:     cfg.TMDBAPIKey,
			httpClient: httpClient,
		},
		breakers: map[string]*gobreaker.CircuitBreaker[[]models.Media]{
			SourceGoogleBooks: newProviderBreaker(SourceGoogleBooks),
			SourceTMDB:        newProviderBreaker(SourceTMDB),
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		cache:   c,
	}
	return s, nil
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.cache.close()
}

// CacheGC runs one garbage collection pass on the lookup cache. It is a
// no-op for the in-memory cache.
func (s *Service) CacheGC() error {
	return s.cache.gc()
}

// newProviderBreaker builds a circuit breaker for one provider: opens after
// a 60% failure rate over at least 5 requests, probes again after 30s.
func newProviderBreaker(name string) *gobreaker.CircuitBreaker[[]models.Media] {
	return gobreaker.NewCircuitBreaker[[]models.Media](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Metadata circuit state changed")
		},
	})
}

// Search returns normalized media records for a title query, newest cache
// entry first when cached. All failures after resilience machinery wrap
// ErrUpstreamUnavailable.
func (s *Service) Search(ctx context.Context, kind models.MediaKind, title string) (_ []models.Media, err error) {
	provider := providerFor(kind)

	start := time.Now()
	defer func() { metrics.RecordMetadataLookup(provider, time.Since(start), err) }()

	if results, ok := s.cache.get(provider, kind, title); ok {
		return results, nil
	}

	results, err := s.breakers[provider].Execute(func() ([]models.Media, error) {
		return s.lookupWithRetry(ctx, kind, title)
	})
	if err != nil {
		logging.Warn().Err(err).
			Str("provider", provider).
			Str("kind", kind.String()).
			Msg("Metadata lookup failed")
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, provider)
	}

	if cacheErr := s.cache.put(provider, kind, title, results); cacheErr != nil {
		logging.Warn().Err(cacheErr).Str("provider", provider).Msg("Failed to cache lookup")
	}
	return results, nil
}

// lookupWithRetry calls the provider with the rate limiter applied,
// retrying transient failures with exponential backoff.
func (s *Service) lookupWithRetry(ctx context.Context, kind models.MediaKind, title string) ([]models.Media, error) {
	attempts := s.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := s.cfg.RetryBaseDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		results, err := s.lookup(ctx, kind, title)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if attempt < attempts-1 {
			logging.Debug().Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", attempts).
				Dur("delay", delay).
				Msg("Retrying metadata lookup")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}
	return nil, fmt.Errorf("max retry attempts reached: %w", lastErr)
}

func (s *Service) lookup(ctx context.Context, kind models.MediaKind, title string) ([]models.Media, error) {
	switch kind {
	case models.MediaKindBook:
		return s.books.searchByTitle(ctx, title)
	case models.MediaKindMovie:
		return s.tmdb.searchMovies(ctx, title)
	case models.MediaKindTV:
		return s.tmdb.searchTV(ctx, title)
	default:
		return nil, fmt.Errorf("invalid media kind %q", kind)
	}
}

func providerFor(kind models.MediaKind) string {
	if kind == models.MediaKindBook {
		return SourceGoogleBooks
	}
	return SourceTMDB
}
