// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

// Package config loads application configuration with Koanf v2, layered as
// defaults, then an optional YAML file, then GOODTIMES_-prefixed environment
// variables. Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Metadata MetadataConfig `koanf:"metadata"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an in-memory store.
	Path string `koanf:"path"`
	// MaxMemory caps DuckDB's memory usage, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
	// QueryTimeout bounds any single query when the caller passes no
	// deadline of its own.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// AuthConfig configures external-identity verification and local sessions.
type AuthConfig struct {
	// OIDCIssuer is the external identity provider's issuer URL. Login
	// verifies provider ID tokens against it; users are provisioned on
	// first verified subject.
	OIDCIssuer   string `koanf:"oidc_issuer"`
	OIDCClientID string `koanf:"oidc_client_id"`

	// JWTSecret signs local session tokens (HS256). Minimum 32 characters.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
}

// MetadataConfig configures the external media lookup providers.
type MetadataConfig struct {
	GoogleBooksURL    string `koanf:"google_books_url"`
	GoogleBooksAPIKey string `koanf:"google_books_api_key"`
	TMDBURL           string `koanf:"tmdb_url"`
	TMDBImageURL      string `koanf:"tmdb_image_url"`
	TMDBAPIKey        string `koanf:"tmdb_api_key"`

	Timeout           time.Duration `koanf:"timeout"`
	RetryAttempts     int           `koanf:"retry_attempts"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`

	// CachePath is the Badger directory for cached lookups; empty runs the
	// cache in memory.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// APIConfig configures request shaping at the HTTP edge.
type APIConfig struct {
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks required fields and value ranges after loading.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Auth.OIDCIssuer != "" {
		if _, err := url.ParseRequestURI(c.Auth.OIDCIssuer); err != nil {
			return fmt.Errorf("auth.oidc_issuer is not a valid URL: %w", err)
		}
	}
	if c.Metadata.RetryAttempts < 1 {
		return fmt.Errorf("metadata.retry_attempts must be at least 1, got %d", c.Metadata.RetryAttempts)
	}
	if c.Metadata.RequestsPerSecond <= 0 {
		return fmt.Errorf("metadata.requests_per_second must be positive, got %f", c.Metadata.RequestsPerSecond)
	}
	if c.API.RateLimitRequests <= 0 {
		return fmt.Errorf("api.rate_limit_requests must be positive, got %d", c.API.RateLimitRequests)
	}
	return nil
}
