// Package ratelimit provides a Redis-backed fixed-window limiter keyed
// by (action, client identity). Windows are wall-clock based.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	rdb    *redis.Client
	prefix string
}

// Decision is the outcome of a single Allow call. RetryAfter is only
// meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

func New(rdb *redis.Client, prefix string) *Limiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &Limiter{rdb: rdb, prefix: prefix}
}

// Allow counts one attempt against the (action, identity) window and
// reports whether it fits within limit.
func (l *Limiter) Allow(ctx context.Context, action, identity string, limit int, window time.Duration) (Decision, error) {
	key := fmt.Sprintf("%s:%s:%s", l.prefix, action, identity)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limiter incr: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limiter expire: %w", err)
		}
	}
	if count > int64(limit) {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true}, nil
}
