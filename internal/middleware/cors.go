// File: internal/middleware/cors.go
package middleware

import (
    "net/http"
    "strings"
)

// CORSMiddleware allows the listed origins; "*" allows any origin.
// Credentialed requests echo the origin back instead of "*".
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
    allowAll := false
    allowed := make(map[string]bool, len(allowedOrigins))
    for _, o := range allowedOrigins {
        o = strings.TrimRight(strings.TrimSpace(o), "/")
        if o == "*" {
            allowAll = true
        }
        allowed[o] = true
    }

    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            origin := r.Header.Get("Origin")
            if origin != "" && (allowAll || allowed[origin]) {
                h := w.Header()
                h.Set("Access-Control-Allow-Origin", origin)
                h.Set("Access-Control-Allow-Credentials", "true")
                h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
                h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
                h.Add("Vary", "Origin")
            }

            if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
                w.WriteHeader(http.StatusNoContent)
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}
