package handlers

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/redis"
)

func miniredisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	client, err := redis.New(&config.Config{Redis: config.RedisConfig{Enabled: true, Host: host, Port: port}})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewLimiter_SharedWindowUsesBurst(t *testing.T) {
	client, _ := miniredisClient(t)

	l := NewLimiter(client, 1, 3)
	_, isShared := l.(*SharedLimiter)
	require.True(t, isShared)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d", i+1)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Allow(ctx)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Second)
}

func TestNewLimiter_SharedWindowUsesRateWhenLarger(t *testing.T) {
	client, _ := miniredisClient(t)

	l := NewLimiter(client, 5, 1)
	d, err := l.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}
