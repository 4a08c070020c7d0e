// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, limit int, period time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, period)
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func take(t *testing.T, rl *RateLimiter, key string) Quota {
	t.Helper()
	q, err := rl.Take(context.Background(), key)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	return q
}

func TestRateLimiterTake(t *testing.T) {
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := range 3 {
		q := take(t, rl, "10.0.0.1")
		if !q.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if q.Remaining != 2-i || q.Limit != 3 {
			t.Errorf("request %d: quota %+v", i+1, q)
		}
	}

	if q := take(t, rl, "10.0.0.1"); q.Allowed || q.RetryAfter != time.Minute {
		t.Errorf("4th request: %+v, want refused with 1m", q)
	}

	if q := take(t, rl, "10.0.0.2"); !q.Allowed {
		t.Error("a different client has its own window")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, time.Minute)

	take(t, rl, "ip")
	clock.advance(30 * time.Second)
	take(t, rl, "ip")

	q := take(t, rl, "ip")
	if q.Allowed {
		t.Fatal("should be limited")
	}
	if q.RetryAfter != 30*time.Second {
		t.Errorf("retry after %v, want 30s until the oldest request expires", q.RetryAfter)
	}

	clock.advance(30 * time.Second)
	if q := take(t, rl, "ip"); !q.Allowed || q.Remaining != 0 {
		t.Errorf("after the first request expires: %+v", q)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, clock := newTestLimiter(t, 2, time.Minute)

	handler := RateLimit(rl, newTestLogger(&bytes.Buffer{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/slug", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 2 {
		rr := send()
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
		if got := rr.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Errorf("X-RateLimit-Limit = %q", got)
		}
	}

	clock.advance(20 * time.Second)
	rr := send()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "40" {
		t.Errorf("Retry-After = %q, want 40", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, time.Minute)

	take(t, rl, "ip-old")
	clock.advance(45 * time.Second)
	take(t, rl, "ip-fresh")
	clock.advance(30 * time.Second)

	rl.sweep()

	if n := rl.size(); n != 1 {
		t.Fatalf("expected 1 remaining client, got %d", n)
	}
	rl.mu.Lock()
	_, fresh := rl.clients["ip-fresh"]
	rl.mu.Unlock()
	if !fresh {
		t.Error("ip-fresh still has a request inside the window")
	}
}

// brokenLimiter always fails.
type brokenLimiter struct{}

func (brokenLimiter) Take(context.Context, string) (Quota, error) {
	return Quota{}, errors.New("valkey: connection refused")
}

func TestRateLimitFailsOpen(t *testing.T) {
	var logs bytes.Buffer
	handler := RateLimit(brokenLimiter{}, newTestLogger(&logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/slug", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rr.Code)
	}
	if !strings.Contains(logs.String(), "rate limiter unavailable") {
		t.Errorf("limiter failure should be logged, got %q", logs.String())
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{name: "x-forwarded-for single", xff: "10.0.0.1", remoteAddr: "192.168.1.1:1234", want: "10.0.0.1"},
		{name: "x-forwarded-for chain", xff: "10.0.0.1, 172.16.0.1", remoteAddr: "192.168.1.1:1234", want: "10.0.0.1"},
		{name: "x-real-ip", xri: " 10.0.0.2 ", remoteAddr: "192.168.1.1:1234", want: "10.0.0.2"},
		{name: "blank x-forwarded-for entry", xff: " , 10.0.0.3", xri: "10.0.0.4", remoteAddr: "192.168.1.1:1234", want: "10.0.0.4"},
		{name: "remote addr", remoteAddr: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "remote addr ipv6", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", want: "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
