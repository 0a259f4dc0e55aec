package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const topCacheKey = "catalog:top"

// TopCache holds the ranked top list in redis for a bounded interval.
// A nil receiver or nil client degrades to a no-op, so the service keeps
// working when redis is unavailable.
type TopCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopCache connects to redis and returns a cache with the given TTL.
func NewTopCache(addr, password string, ttl time.Duration) (*TopCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TopCache{client: rdb, ttl: ttl}, nil
}

// Get returns the cached top list, or ok=false on miss or redis failure.
func (c *TopCache) Get(ctx context.Context) ([]TopEntry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, topCacheKey).Bytes()
	if err != nil {
		return nil, false
	}

	var entries []TopEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set stores the top list best-effort; failures are ignored, the next read
// just goes upstream again.
func (c *TopCache) Set(ctx context.Context, entries []TopEntry) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	c.client.Set(ctx, topCacheKey, raw, c.ttl)
}

// Close releases the redis connection.
func (c *TopCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
