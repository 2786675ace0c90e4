package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore persists sliding-window attempt counters in Redis sorted sets.
type RateLimitStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRateLimitStore constructs a store scoped under the given key prefix.
func NewRateLimitStore(client *redis.Client, prefix string, ttl time.Duration) *RateLimitStore {
	if prefix == "" {
		prefix = "ligera:ratelimit"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RateLimitStore{client: client, prefix: prefix, ttl: ttl}
}

// Hit records an attempt, trims entries outside the window, and returns the
// number of attempts remaining in the window including this one.
func (s *RateLimitStore) Hit(ctx context.Context, identifier string, window time.Duration, at time.Time) (int, error) {
	key := s.key(identifier)
	threshold := fmt.Sprintf("%d", at.Add(-window).UnixNano())

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", threshold)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixNano()), Member: at.UnixNano()})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis rate limit pipeline: %w", err)
	}

	return int(count.Val()), nil
}

func (s *RateLimitStore) key(identifier string) string {
	return fmt.Sprintf("%s:%s", s.prefix, identifier)
}
