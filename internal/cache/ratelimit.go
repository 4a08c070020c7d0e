// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dmuxslug/internal/middleware"
)

// keyPrefix namespaces rate-limit counters.
const keyPrefix = "slug:ratelimit:"

// RateLimiter is a fixed-window request counter stored in Valkey, so every
// server instance sees the same per-client totals.
type RateLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per period for each client key.
func NewRateLimiter(client *redis.Client, limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, period: period, now: time.Now}
}

// Take increments the client's counter for the current window.
func (rl *RateLimiter) Take(ctx context.Context, key string) (middleware.Quota, error) {
	now := rl.now()
	k := windowKey(key, now, rl.period)

	var count *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rl.period)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return middleware.Quota{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	n := int(count.Val())
	q := middleware.Quota{Limit: rl.limit, Remaining: max(rl.limit-n, 0)}
	if n <= rl.limit {
		q.Allowed = true
		return q, nil
	}

	q.RetryAfter = ttl.Val()
	if q.RetryAfter <= 0 {
		q.RetryAfter = windowEnd(now, rl.period).Sub(now)
	}
	return q, nil
}

// windowKey names the counter for key in the window containing t.
func windowKey(key string, t time.Time, period time.Duration) string {
	return keyPrefix + key + ":" + strconv.FormatInt(t.UnixNano()/int64(period), 10)
}

// windowEnd is the first instant after the window containing t.
func windowEnd(t time.Time, period time.Duration) time.Time {
	return t.Truncate(period).Add(period)
}
