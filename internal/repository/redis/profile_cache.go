package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
)

// ProfileCache caches account profiles by identifier with a TTL. It is a
// best-effort layer; a miss returns (nil, nil) and consumers fall back to
// the repository.
type ProfileCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewProfileCache constructs a redis-backed profile cache.
func NewProfileCache(client *redis.Client, prefix string, ttl time.Duration) *ProfileCache {
	if prefix == "" {
		prefix = "ligera:profile"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *ProfileCache) key(accountID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, accountID)
}

// Get returns the cached profile or (nil, nil) on a miss.
func (c *ProfileCache) Get(ctx context.Context, accountID string) (*domain.Profile, error) {
	raw, err := c.client.Get(ctx, c.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached profile: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}

	return &profile, nil
}

// Set stores the profile under its identifier with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	if err := c.client.Set(ctx, c.key(profile.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache profile: %w", err)
	}

	return nil
}

// Invalidate drops the cached profile for the account.
func (c *ProfileCache) Invalidate(ctx context.Context, accountID string) error {
	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached profile: %w", err)
	}
	return nil
}

var _ port.ProfileCache = (*ProfileCache)(nil)
