// Package cache provides a Redis read-through cache for the stage catalog.
// The catalog is read on every transition, so the hot path avoids a database
// round trip; any cache failure silently falls back to Postgres.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"clientdesk_backend/internal/catalog/repository"

	"github.com/redis/go-redis/v9"
)

const stagesKey = "catalog:stages"

type StageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a stage cache. rdb may be nil, in which case every lookup
// misses and writes are no-ops.
func New(rdb *redis.Client, ttl time.Duration) *StageCache {
	return &StageCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached stage catalog, reporting whether it was present.
func (c *StageCache) Get(ctx context.Context) ([]repository.Stage, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, stagesKey).Bytes()
	if err != nil {
		return nil, false
	}

	var stages []repository.Stage
	if err := json.Unmarshal(raw, &stages); err != nil {
		return nil, false
	}
	return stages, true
}

// Set stores the stage catalog with the configured TTL.
func (c *StageCache) Set(ctx context.Context, stages []repository.Stage) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(stages)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, stagesKey, raw, c.ttl)
}

// Invalidate drops the cached catalog (after a seed run).
func (c *StageCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, stagesKey)
}
