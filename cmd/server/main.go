// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

// Package main is the entry point for the Goodtimes server.
//
// Goodtimes is a social backend for tracking media consumption: users log
// what they read and watch, friend each other, and recommend media. All
// writes are append-only events in DuckDB; every read resolves the latest
// state per user and media at query time.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Database: embedded DuckDB with the append-only event schema
//  3. Metadata: Google Books / TMDB lookups behind a Badger cache,
//     per-provider circuit breakers, and a shared rate limiter
//  4. Authentication: OIDC ID token verification plus local session JWTs
//  5. HTTP Server: Chi REST API, supervised by a suture tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (GOODTIMES_ prefix, e.g. GOODTIMES_SERVER_PORT)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required in production:
//   - GOODTIMES_AUTH_JWT_SECRET: 32+ character secret for session tokens
//   - GOODTIMES_AUTH_OIDC_ISSUER / GOODTIMES_AUTH_OIDC_CLIENT_ID: the
//     identity provider that issues the ID tokens login accepts
//   - GOODTIMES_METADATA_TMDB_API_KEY: TMDB key for movie/TV search
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the configured
// shutdown timeout, then closes the metadata cache and database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/api"
	"github.com/goodtimes-app/goodtimes/internal/auth"
	"github.com/goodtimes-app/goodtimes/internal/config"
	"github.com/goodtimes-app/goodtimes/internal/database"
	"github.com/goodtimes-app/goodtimes/internal/logging"
	"github.com/goodtimes-app/goodtimes/internal/metadata"
	"github.com/goodtimes-app/goodtimes/internal/supervisor"
	"github.com/goodtimes-app/goodtimes/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("oidc_issuer", cfg.Auth.OIDCIssuer).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	meta, err := metadata.New(&cfg.Metadata)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize metadata service")
	}
	defer func() {
		if err := meta.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing metadata cache")
		}
	}()
	if cfg.Metadata.TMDBAPIKey == "" {
		logging.Warn().Msg("TMDB API key not configured; movie and TV search will fail upstream")
	}

	sessions, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session manager")
	}

	// Context for startup and graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize identity verifier")
	}

	handler := api.NewHandler(db, meta, sessions, verifier)
	router := api.NewRouter(&cfg.API, handler, sessions)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// The supervisor logs through slog; bridge it to the zerolog stream.
	tree, err := supervisor.NewSupervisorTree(logging.Slog(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if cfg.Metadata.CachePath != "" {
		tree.AddMaintenanceService(services.NewCacheGCService(meta, 10*time.Minute))
	}
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

// newVerifier builds the OIDC verifier when an issuer is configured. An
// unset issuer yields a verifier that rejects every login, which keeps
// development setups without an identity provider bootable.
func newVerifier(ctx context.Context, cfg *config.Config) (auth.IdentityVerifier, error) {
	if cfg.Auth.OIDCIssuer == "" {
		logging.Warn().Msg("No OIDC issuer configured; all logins will be rejected")
		return rejectAllVerifier{}, nil
	}
	return auth.NewOIDCVerifier(ctx, &cfg.Auth)
}

type rejectAllVerifier struct{}

func (rejectAllVerifier) VerifyIDToken(context.Context, string) (*auth.Identity, error) {
	return nil, errors.New("no identity provider configured")
}
