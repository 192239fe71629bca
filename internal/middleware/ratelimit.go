// File: internal/middleware/ratelimit.go
package middleware

import (
    "encoding/json"
    "fmt"
    "log"
    "math"
    "net/http"

    "github.com/iyunix/go-visionai/internal/ratelimit"
)

// RateLimitMiddleware limits requests per authenticated user, falling back to
// the client IP when the request carries no user.
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter, name string) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            identifier, ok := UserIDFromContext(r.Context())
            if !ok {
                identifier = "ip:" + ratelimit.GetClientIP(r)
            }

            allowed, info := limiter.Allow(name + ":" + identifier)

            w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
            w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
            w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

            if !allowed {
                log.Printf("[RateLimit] Blocked %s request from %s", name, identifier)

                retryAfter := int(math.Ceil(info.RetryAfter.Seconds()))
                if retryAfter > 0 {
                    w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
                }

                w.Header().Set("Content-Type", "application/json")
                w.WriteHeader(http.StatusTooManyRequests)
                json.NewEncoder(w).Encode(map[string]interface{}{
                    "error":      "Too many requests. Please try again later.",
                    "retryAfter": retryAfter,
                })
                return
            }

            next.ServeHTTP(w, r)
        })
    }
}
