package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores opaque byte payloads (rendered charts) under a key prefix.
// Every method is a no-op when Redis is disabled.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached payload
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.client.Enabled() {
		return nil, false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a payload with TTL
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Set(ctx, c.key(key), value, ttl).Err()
}

// GetOrSet returns the cached payload or renders it with fn and stores it.
// A failed store is not an error: the fresh payload is still returned.
func (c *Cache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, bool, error) {
	data, found, err := c.Get(ctx, key)
	if err == nil && found {
		return data, true, nil
	}

	data, err = fn()
	if err != nil {
		return nil, false, err
	}

	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}

// ChartKey builds the cache key of a rendered chart.
// version identifies the dataset so a reload never serves stale images.
func ChartKey(version, kind string, param int) string {
	return fmt.Sprintf("chart:%s:%s:%d", version, kind, param)
}
