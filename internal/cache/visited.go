// Package cache provides a cross-run visited-URL cache backed by Redis
// (spec §10), so a crawl can resume across process restarts without
// re-auditing pages it already covered. Grounded on
// internal/config/redis.go's client construction.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

// VisitedCache tracks normalized URLs already audited for one crawl run.
type VisitedCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New builds a VisitedCache scoped by key prefix (typically the crawl's
// seed URL or run ID) so concurrent crawls don't collide.
func New(rdb *redis.Client, keyPrefix string) *VisitedCache {
	return &VisitedCache{rdb: rdb, prefix: "crawl:visited:" + keyPrefix, ttl: defaultTTL}
}

// Seen reports whether normalizedURL was already marked visited.
func (c *VisitedCache) Seen(ctx context.Context, normalizedURL string) (bool, error) {
	n, err := c.rdb.SIsMember(ctx, c.prefix, normalizedURL).Result()
	if err != nil {
		return false, fmt.Errorf("cache-read-failed: %w", err)
	}
	return n, nil
}

// Mark records normalizedURL as visited, refreshing the set's TTL.
func (c *VisitedCache) Mark(ctx context.Context, normalizedURL string) error {
	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, c.prefix, normalizedURL)
	pipe.Expire(ctx, c.prefix, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache-write-failed: %w", err)
	}
	return nil
}

// Clear removes the visited set entirely, used when a crawl is restarted
// from scratch rather than resumed.
func (c *VisitedCache) Clear(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.prefix).Err(); err != nil {
		return fmt.Errorf("cache-write-failed: clear: %w", err)
	}
	return nil
}
