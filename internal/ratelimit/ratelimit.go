// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
    "net"
    "net/http"
    "strings"
    "sync"
    "time"
)

// Config holds rate limiting configuration
type Config struct {
    WindowSize    time.Duration // Time window for rate limiting
    MaxRequests   int           // Maximum requests per window
    CleanupPeriod time.Duration // How often to clean up old entries
    BanDuration   time.Duration // Cool-down after exceeding the limit; zero waits for the window
}

// DefaultGenerateConfig limits generation requests per user per minute.
func DefaultGenerateConfig(perMinute int) *Config {
    if perMinute <= 0 {
        perMinute = 20
    }
    return &Config{
        WindowSize:    time.Minute,
        MaxRequests:   perMinute,
        CleanupPeriod: 5 * time.Minute,
    }
}

// requestRecord tracks requests for one identifier
type requestRecord struct {
    Count     int
    FirstSeen time.Time
    LastSeen  time.Time
    BannedAt  *time.Time
}

// MemoryRateLimiter implements in-memory fixed-window rate limiting
type MemoryRateLimiter struct {
    config   *Config
    requests map[string]*requestRecord
    mu       sync.Mutex
    stopCh   chan struct{}
    stopOnce sync.Once
    now      func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
    limiter := &MemoryRateLimiter{
        config:   config,
        requests: make(map[string]*requestRecord),
        stopCh:   make(chan struct{}),
        now:      time.Now,
    }

    go limiter.cleanupLoop()

    return limiter
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
    Allowed    bool
    Limit      int
    Remaining  int
    ResetTime  time.Time
    RetryAfter time.Duration
    Banned     bool
}

// Allow records one request for identifier and reports whether it may proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
    rl.mu.Lock()
    defer rl.mu.Unlock()

    now := rl.now()
    record, exists := rl.requests[identifier]

    if !exists {
        rl.requests[identifier] = &requestRecord{Count: 1, FirstSeen: now, LastSeen: now}
        return true, rl.allowed(rl.config.MaxRequests-1, now.Add(rl.config.WindowSize))
    }

    // Still cooling down
    if record.BannedAt != nil && now.Sub(*record.BannedAt) < rl.config.BanDuration {
        remaining := rl.config.BanDuration - now.Sub(*record.BannedAt)
        return false, &RateLimitInfo{
            Limit:      rl.config.MaxRequests,
            ResetTime:  record.BannedAt.Add(rl.config.BanDuration),
            RetryAfter: remaining,
            Banned:     true,
        }
    }

    // Window has reset
    if now.Sub(record.FirstSeen) >= rl.config.WindowSize {
        record.Count = 1
        record.FirstSeen = now
        record.LastSeen = now
        record.BannedAt = nil
        return true, rl.allowed(rl.config.MaxRequests-1, now.Add(rl.config.WindowSize))
    }

    record.Count++
    record.LastSeen = now
    reset := record.FirstSeen.Add(rl.config.WindowSize)

    if record.Count > rl.config.MaxRequests {
        if rl.config.BanDuration > 0 {
            banTime := now
            record.BannedAt = &banTime
            return false, &RateLimitInfo{
                Limit:      rl.config.MaxRequests,
                ResetTime:  now.Add(rl.config.BanDuration),
                RetryAfter: rl.config.BanDuration,
                Banned:     true,
            }
        }
        return false, &RateLimitInfo{
            Limit:      rl.config.MaxRequests,
            ResetTime:  reset,
            RetryAfter: reset.Sub(now),
        }
    }

    return true, rl.allowed(rl.config.MaxRequests-record.Count, reset)
}

func (rl *MemoryRateLimiter) allowed(remaining int, reset time.Time) *RateLimitInfo {
    return &RateLimitInfo{
        Allowed:   true,
        Limit:     rl.config.MaxRequests,
        Remaining: remaining,
        ResetTime: reset,
    }
}

// Reset forgets every request recorded for identifier.
func (rl *MemoryRateLimiter) Reset(identifier string) {
    rl.mu.Lock()
    defer rl.mu.Unlock()
    delete(rl.requests, identifier)
}

// cleanupLoop periodically removes old records
func (rl *MemoryRateLimiter) cleanupLoop() {
    ticker := time.NewTicker(rl.config.CleanupPeriod)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            rl.cleanup()
        case <-rl.stopCh:
            return
        }
    }
}

// cleanup removes expired records
func (rl *MemoryRateLimiter) cleanup() {
    rl.mu.Lock()
    defer rl.mu.Unlock()

    now := rl.now()
    for identifier, record := range rl.requests {
        windowExpired := now.Sub(record.FirstSeen) > rl.config.WindowSize
        banExpired := record.BannedAt != nil && now.Sub(*record.BannedAt) > rl.config.BanDuration

        if (windowExpired && record.BannedAt == nil) || banExpired {
            delete(rl.requests, identifier)
        }
    }
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
    rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
    // Behind a proxy or load balancer
    if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
        if ip := parseFirstIP(forwarded); ip != "" {
            return ip
        }
    }

    if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
        return realIP
    }

    ip, _, err := net.SplitHostPort(r.RemoteAddr)
    if err != nil {
        return r.RemoteAddr
    }
    return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
    first, _, _ := strings.Cut(forwarded, ",")
    return strings.TrimSpace(first)
}
