// Goodtimes - Media Tracking Social Backend
// Copyright 2026 Goodtimes contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodtimes-app/goodtimes

package services

import (
	"context"
	"time"

	"github.com/goodtimes-app/goodtimes/internal/logging"
)

// GarbageCollector is one housekeeping pass over a store, typically Badger
// value-log GC. Satisfied by metadata.Service.CacheGC.
type GarbageCollector interface {
	CacheGC() error
}

// CacheGCService periodically runs garbage collection on the metadata
// lookup cache. A failed pass is logged and retried on the next tick
// rather than crashing the service.
type CacheGCService struct {
	collector GarbageCollector
	interval  time.Duration
	name      string
}

// NewCacheGCService creates the service. Intervals under a minute are
// clamped to the 10 minute default to keep GC off the hot path.
func NewCacheGCService(collector GarbageCollector, interval time.Duration) *CacheGCService {
	if interval < time.Minute {
		interval = 10 * time.Minute
	}
	return &CacheGCService{
		collector: collector,
		interval:  interval,
		name:      "cache-gc",
	}
}

// Serve implements suture.Service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.collector.CacheGC(); err != nil {
				logging.Warn().Err(err).Msg("Cache garbage collection pass failed")
			}
		}
	}
}

// String identifies the service in supervisor log messages.
func (s *CacheGCService) String() string {
	return s.name
}
