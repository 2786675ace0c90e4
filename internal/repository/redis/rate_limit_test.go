package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitStore_HitCountsAttempts(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "test:ratelimit", time.Minute)
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		count, err := store.Hit(ctx, "login:203.0.113.7", time.Minute, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			t.Fatalf("Hit returned error: %v", err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
	}
}

func TestRateLimitStore_WindowSlides(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "test:ratelimit", time.Hour)
	ctx := context.Background()
	base := time.Now()

	if _, err := store.Hit(ctx, "login:ip", time.Minute, base); err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}

	count, err := store.Hit(ctx, "login:ip", time.Minute, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected old attempt trimmed, got count %d", count)
	}
}

func TestRateLimitStore_TrimsOnlyAttemptsOutsideWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "test:ratelimit", time.Hour)
	ctx := context.Background()
	base := time.Now()

	// one stale attempt, two recent ones
	times := []time.Time{
		base,
		base.Add(90 * time.Second),
		base.Add(2 * time.Minute),
	}
	var count int
	for _, at := range times {
		var err error
		count, err = store.Hit(ctx, "login:ip", time.Minute, at)
		if err != nil {
			t.Fatalf("Hit returned error: %v", err)
		}
	}

	if count != 2 {
		t.Fatalf("expected only in-window attempts counted, got %d", count)
	}
}

func TestRateLimitStore_IdentifiersAreIsolated(t *testing.T) {
	client, _ := newTestRedis(t)
	store := NewRateLimitStore(client, "test:ratelimit", time.Minute)
	ctx := context.Background()
	now := time.Now()

	if _, err := store.Hit(ctx, "login:first", time.Minute, now); err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}

	count, err := store.Hit(ctx, "login:second", time.Minute, now.Add(time.Millisecond))
	if err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counters to be keyed per identifier, got %d", count)
	}
}
