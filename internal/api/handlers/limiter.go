package handlers

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/hivdash/pkg/redis"
)

// Limiter decides whether one more prediction may run now.
// A denied Decision carries how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context) (redis.Decision, error)
}

// LocalLimiter is a per-process token bucket
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter allows perSec requests per second with the given burst
func NewLocalLimiter(perSec, burst int) *LocalLimiter {
	return &LocalLimiter{limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Allow consumes a token if one is available now. A denied call gives the
// token back and reports when the next one will be.
func (l *LocalLimiter) Allow(context.Context) (redis.Decision, error) {
	res := l.limiter.Reserve()
	if !res.OK() {
		return redis.Decision{RetryAfter: time.Second}, nil
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return redis.Decision{RetryAfter: delay}, nil
	}
	return redis.Decision{Allowed: true, Remaining: int(l.limiter.Tokens())}, nil
}

// SharedLimiter enforces one limit across all instances through Redis
type SharedLimiter struct {
	limiter *redis.RateLimiter
	cfg     redis.RateLimitConfig
}

// NewSharedLimiter wraps a Redis sliding-window limiter
func NewSharedLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *SharedLimiter {
	return &SharedLimiter{limiter: limiter, cfg: cfg}
}

// Allow checks the shared window
func (l *SharedLimiter) Allow(ctx context.Context) (redis.Decision, error) {
	return l.limiter.Allow(ctx, l.cfg)
}

// NewLimiter picks the shared limiter when Redis is enabled, the local one otherwise.
// The shared one-second window admits max(perSec, burst) requests, so a burst
// configured for one instance still holds across several.
func NewLimiter(client *redis.Client, perSec, burst int) Limiter {
	if client != nil && client.Enabled() {
		return NewSharedLimiter(redis.NewRateLimiter(client, "hivdash"), redis.PredictRateLimit(max(perSec, burst)))
	}
	return NewLocalLimiter(perSec, burst)
}
