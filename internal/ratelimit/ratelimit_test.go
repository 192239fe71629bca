package ratelimit

import (
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func newTestLimiter(cfg *Config) (*MemoryRateLimiter, *time.Time) {
    rl := NewMemoryRateLimiter(cfg)
    now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
    rl.now = func() time.Time { return now }
    return rl, &now
}

func TestAllowWithinWindow(t *testing.T) {
    rl, now := newTestLimiter(&Config{WindowSize: time.Minute, MaxRequests: 2, CleanupPeriod: time.Hour})
    defer rl.Close()

    ok, info := rl.Allow("u1")
    assert.True(t, ok)
    assert.Equal(t, 1, info.Remaining)
    assert.Equal(t, 2, info.Limit)

    ok, info = rl.Allow("u1")
    assert.True(t, ok)
    assert.Equal(t, 0, info.Remaining)

    ok, info = rl.Allow("u1")
    assert.False(t, ok)
    assert.False(t, info.Banned)
    assert.Equal(t, time.Minute, info.RetryAfter)

    // other identifiers are independent
    ok, _ = rl.Allow("u2")
    assert.True(t, ok)

    *now = now.Add(time.Minute)
    ok, _ = rl.Allow("u1")
    assert.True(t, ok)
}

func TestBanDuration(t *testing.T) {
    rl, now := newTestLimiter(&Config{WindowSize: time.Minute, MaxRequests: 1, CleanupPeriod: time.Hour, BanDuration: 10 * time.Minute})
    defer rl.Close()

    rl.Allow("u1")
    ok, info := rl.Allow("u1")
    assert.False(t, ok)
    assert.True(t, info.Banned)

    *now = now.Add(5 * time.Minute)
    ok, _ = rl.Allow("u1")
    assert.False(t, ok)

    *now = now.Add(6 * time.Minute)
    ok, _ = rl.Allow("u1")
    assert.True(t, ok)
}

func TestResetAndCleanup(t *testing.T) {
    rl, now := newTestLimiter(&Config{WindowSize: time.Minute, MaxRequests: 1, CleanupPeriod: time.Hour})
    defer rl.Close()

    rl.Allow("u1")
    rl.Reset("u1")
    ok, _ := rl.Allow("u1")
    assert.True(t, ok)

    *now = now.Add(2 * time.Minute)
    rl.cleanup()
    rl.mu.Lock()
    assert.Empty(t, rl.requests)
    rl.mu.Unlock()
}

func TestGetClientIP(t *testing.T) {
    r := httptest.NewRequest("GET", "/", nil)
    r.RemoteAddr = "10.0.0.1:1234"
    assert.Equal(t, "10.0.0.1", GetClientIP(r))

    r.Header.Set("X-Real-IP", "10.0.0.2")
    assert.Equal(t, "10.0.0.2", GetClientIP(r))

    r.Header.Set("X-Forwarded-For", " 10.0.0.3 , 10.0.0.4")
    assert.Equal(t, "10.0.0.3", GetClientIP(r))
}
