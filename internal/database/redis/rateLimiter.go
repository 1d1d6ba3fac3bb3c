package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimiter gates admission by client identity. Allow returns false when the
// client is over its window budget; a non-nil error means the counter store
// itself failed and the caller must fail closed.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}

type fixedWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) RateLimiter {
	return &fixedWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow increments the window counter and refreshes its expiry in one atomic
// pipeline, so concurrent requests from the same client cannot lose updates.
// The window resets via key expiry; bursts across a window boundary are an
// accepted limitation of fixed-window counting.
func (l *fixedWindowLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := "rate_limit:" + clientID

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter store error: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}
