// Package cache provides caching implementations for repository and
// usecase interfaces.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"checkin_backend/internal/feature/admin/usecase"
)

// SummaryProvider is the slice of the admin usecase the cache decorates.
type SummaryProvider interface {
	GetSummary(ctx context.Context) (*usecase.Summary, error)
}

// CachingSummaryProvider decorates a SummaryProvider with Redis caching.
// The dashboard summary is recomputed from full visit-log scans, so a short
// TTL keeps the admin view cheap without making it noticeably stale.
type CachingSummaryProvider struct {
	inner SummaryProvider
	rdb   *redis.Client
	ttl   time.Duration
	key   string
}

// NewCachingSummaryProvider decorates a SummaryProvider with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If key is empty, it uses
// "analytics:summary".
func NewCachingSummaryProvider(rdb *redis.Client, ttl time.Duration, inner SummaryProvider, key string) *CachingSummaryProvider {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if key == "" {
		key = "analytics:summary"
	}
	return &CachingSummaryProvider{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		key:   key,
	}
}

// GetSummary retrieves the summary, checking the cache first and falling
// back to the underlying usecase.
func (c *CachingSummaryProvider) GetSummary(ctx context.Context) (*usecase.Summary, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetSummary(ctx)
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, c.key).Bytes(); err == nil && len(b) > 0 {
		var out usecase.Summary
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, c.key).Err()
	}

	// 2) Fallback to the aggregator
	out, err := c.inner.GetSummary(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, c.key, b, c.ttl).Err()
	}

	return out, nil
}
