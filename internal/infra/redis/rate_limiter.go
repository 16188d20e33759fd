package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

// RateLimiter is a sliding-window limiter over a sorted set of event
// timestamps. It allows bursts up to the window cap and reports false beyond
// it; callers delay and retry rather than dropping work.
type RateLimiter struct {
	client RedisClient
	now    func() time.Time
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client, now: time.Now}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	if err := r.client.ZRemRangeByScore(ctx, key, "0", cutoff); err != nil {
		return false, err
	}
	count, err := r.client.ZCard(ctx, key)
	if err != nil {
		return false, err
	}
	if count >= int64(limit) {
		return false, nil
	}
	if err := r.client.ZAdd(ctx, key, float64(now.UnixNano()), ulid.Make().String()); err != nil {
		return false, err
	}
	return true, nil
}

func QueueRateKey(queue string) string {
	return fmt.Sprintf("rate_limit:queue:%s", queue)
}
