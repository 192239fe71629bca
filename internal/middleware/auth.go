// File: internal/middleware/auth.go
package middleware

import (
    "encoding/json"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/iyunix/go-visionai/internal/auth"
)

// NewJWTMiddleware validates the token from the auth cookie or a Bearer header
// and puts its subject into the request context as the user id.
func NewJWTMiddleware(secretKey []byte) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            token, fromCookie := tokenFromRequest(r)
            if token == "" {
                log.Printf("[AuthMiddleware] Missing token for %s %s", r.Method, r.URL.Path)
                unauthorized(w)
                return
            }

            userID, err := auth.ValidateToken(token, secretKey)
            if err != nil {
                log.Printf("[AuthMiddleware] Invalid token: %v", err)
                if fromCookie {
                    // Clear invalid cookie
                    http.SetCookie(w, &http.Cookie{
                        Name:     AuthCookieName,
                        Value:    "",
                        Path:     "/",
                        Expires:  time.Unix(0, 0),
                        HttpOnly: true,
                        Secure:   true,
                        SameSite: http.SameSiteLaxMode,
                    })
                }
                unauthorized(w)
                return
            }

            next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
        })
    }
}

func tokenFromRequest(r *http.Request) (string, bool) {
    if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
        return cookie.Value, true
    }
    header := r.Header.Get("Authorization")
    if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
        return strings.TrimSpace(token), false
    }
    return "", false
}

func unauthorized(w http.ResponseWriter) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusUnauthorized)
    json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
