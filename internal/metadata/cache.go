// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package metadata

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/goodtimes-app/goodtimes/internal/metrics"
	"github.com/goodtimes-app/goodtimes/internal/models"
)

// cache stores normalized lookup results in BadgerDB keyed by
// provider + kind + query, with a TTL. A path-less cache runs in memory and
// dies with the process, which is fine for single-node deployments.
type cache struct {
	db       *badger.DB
	ttl      time.Duration
	inMemory bool
}

func newCache(path string, ttl time.Duration) (*cache, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.ValueLogFileSize = 16 << 20
	}
	opts.Logger = nil // Badger's own logging is too chatty for a cache

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata cache: %w", err)
	}
	return &cache{db: db, ttl: ttl, inMemory: path == ""}, nil
}

// gc runs one value-log garbage collection pass. Badger rejects GC in
// in-memory mode and reports ErrNoRewrite when nothing was reclaimed;
// both read as a clean pass here.
func (c *cache) gc() error {
	if c.inMemory {
		return nil
	}
	if err := c.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

func (c *cache) close() error {
	return c.db.Close()
}

func cacheKey(provider string, kind models.MediaKind, query string) []byte {
	return []byte(fmt.Sprintf("lookup:%s:%s:%s", provider, kind, query))
}

// get returns the cached results for a key, or (nil, false) on a miss.
// A corrupt entry reads as a miss; the next put overwrites it.
func (c *cache) get(provider string, kind models.MediaKind, query string) ([]models.Media, bool) {
	var results []models.Media
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(provider, kind, query))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &results)
		})
	})
	if err != nil {
		metrics.MetadataCacheMisses.Inc()
		return nil, false
	}
	metrics.MetadataCacheHits.Inc()
	return results, true
}

func (c *cache) put(provider string, kind models.MediaKind, query string, results []models.Media) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(provider, kind, query), payload)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}
