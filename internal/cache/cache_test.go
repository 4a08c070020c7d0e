// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a client on DB 15. Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_ADDR", "localhost:6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	testValkeyClient(t)

	client, err := ConnectValkey(context.Background(), envOr("VALKEY_ADDR", "localhost:6379"), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Fatalf("ConnectValkey: %v", err)
	}
	client.Close()
}

func TestConnectValkeyUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := ConnectValkey(ctx, "127.0.0.1:1", ""); err == nil {
		t.Fatal("expected an error for an unreachable address")
	}
}

func TestRateLimiterTake(t *testing.T) {
	client := testValkeyClient(t)
	rl := NewRateLimiter(client, 2, time.Minute)
	// Pin the clock mid-window so the test never straddles a boundary.
	rl.now = func() time.Time { return time.Now().Truncate(time.Minute).Add(10 * time.Second) }

	ctx := context.Background()
	key := "test-" + t.Name()

	for i := range 2 {
		q, err := rl.Take(ctx, key)
		if err != nil {
			t.Fatalf("Take: %v", err)
		}
		if !q.Allowed || q.Remaining != 1-i || q.Limit != 2 {
			t.Errorf("request %d: %+v", i+1, q)
		}
	}

	q, err := rl.Take(ctx, key)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if q.Allowed {
		t.Error("3rd request should be limited")
	}
	if q.RetryAfter <= 0 || q.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within the window", q.RetryAfter)
	}

	other, err := rl.Take(ctx, key+"-other")
	if err != nil || !other.Allowed {
		t.Errorf("other client: %+v, %v", other, err)
	}
}

func TestRateLimiterTakeClosedClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	client.Close()

	_, err := NewRateLimiter(client, 1, time.Minute).Take(context.Background(), "ip")
	if err == nil {
		t.Fatal("expected an error from a closed client")
	}
}

func TestWindowKey(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := windowKey("10.0.0.1", base.Add(5*time.Second), time.Minute)
	b := windowKey("10.0.0.1", base.Add(59*time.Second), time.Minute)
	c := windowKey("10.0.0.1", base.Add(61*time.Second), time.Minute)
	d := windowKey("10.0.0.2", base.Add(5*time.Second), time.Minute)

	if a != b {
		t.Errorf("same window, different keys: %q vs %q", a, b)
	}
	if a == c {
		t.Error("next window must use a new key")
	}
	if a == d {
		t.Error("clients must not share a key")
	}
	if len(a) <= len(keyPrefix) || a[:len(keyPrefix)] != keyPrefix {
		t.Errorf("key %q lacks prefix", a)
	}
}

func TestWindowEnd(t *testing.T) {
	got := windowEnd(time.Date(2026, 3, 1, 10, 0, 42, 0, time.UTC), time.Minute)
	want := time.Date(2026, 3, 1, 10, 1, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("windowEnd = %v, want %v", got, want)
	}
}
