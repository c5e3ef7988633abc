package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/hivdash/pkg/config"
)

// Client is the optional shared store behind the chart cache and the
// prediction limiter. A disabled Client is valid and every helper in this
// package degrades to a pass-through on it.
// ⭐ SSOT: the only place a Redis connection is opened
type Client struct {
	rdb *redis.Client
}

// Chart renders and limiter checks sit on the request path, so Redis calls
// fail fast instead of stalling a page.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
	pingTimeout = 3 * time.Second
)

// New connects when REDIS_ENABLED is set and returns a disabled Client otherwise
func New(cfg *config.Config) (*Client, error) {
	rc := cfg.Redis
	if !rc.Enabled {
		return Disabled(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(rc.Host, rc.Port),
		Password:     rc.Password,
		DB:           rc.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Disabled returns a Client without a connection
func Disabled() *Client {
	return &Client{}
}

// Enabled reports whether a connection is open. Safe on a nil Client.
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Ping checks the connection; a disabled Client always succeeds
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection, if any
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Redis returns the underlying client, nil when disabled
func (c *Client) Redis() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}
