package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iyunix/go-visionai/internal/auth"
    "github.com/iyunix/go-visionai/internal/ratelimit"
)

var testSecret = []byte("test-secret")

func echoUser() http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        userID, _ := UserIDFromContext(r.Context())
        w.Write([]byte(userID))
    })
}

func TestJWTMiddlewareCookieAndBearer(t *testing.T) {
    token, err := auth.GenerateJWT("user-42", testSecret, time.Hour)
    require.NoError(t, err)
    h := NewJWTMiddleware(testSecret)(echoUser())

    r := httptest.NewRequest("GET", "/api/chats", nil)
    r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
    w := httptest.NewRecorder()
    h.ServeHTTP(w, r)
    assert.Equal(t, http.StatusOK, w.Code)
    assert.Equal(t, "user-42", w.Body.String())

    r = httptest.NewRequest("GET", "/api/chats", nil)
    r.Header.Set("Authorization", "Bearer "+token)
    w = httptest.NewRecorder()
    h.ServeHTTP(w, r)
    assert.Equal(t, "user-42", w.Body.String())
}

func TestJWTMiddlewareRejects(t *testing.T) {
    h := NewJWTMiddleware(testSecret)(echoUser())

    w := httptest.NewRecorder()
    h.ServeHTTP(w, httptest.NewRequest("GET", "/api/chats", nil))
    assert.Equal(t, http.StatusUnauthorized, w.Code)

    other, err := auth.GenerateJWT("user-42", []byte("other"), time.Hour)
    require.NoError(t, err)
    r := httptest.NewRequest("GET", "/api/chats", nil)
    r.AddCookie(&http.Cookie{Name: AuthCookieName, Value: other})
    w = httptest.NewRecorder()
    h.ServeHTTP(w, r)
    assert.Equal(t, http.StatusUnauthorized, w.Code)
    assert.Contains(t, w.Header().Get("Set-Cookie"), AuthCookieName+"=;")
}

func TestRateLimitPerUser(t *testing.T) {
    limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{WindowSize: time.Minute, MaxRequests: 1, CleanupPeriod: time.Hour})
    defer limiter.Close()
    h := RateLimitMiddleware(limiter, "generate")(echoUser())

    do := func(userID string) *httptest.ResponseRecorder {
        r := httptest.NewRequest("POST", "/api/generate", nil)
        r = r.WithContext(WithUserID(r.Context(), userID))
        w := httptest.NewRecorder()
        h.ServeHTTP(w, r)
        return w
    }

    assert.Equal(t, http.StatusOK, do("a").Code)
    w := do("a")
    assert.Equal(t, http.StatusTooManyRequests, w.Code)
    assert.NotEmpty(t, w.Header().Get("Retry-After"))
    assert.Equal(t, http.StatusOK, do("b").Code)
}

func TestCORS(t *testing.T) {
    h := CORSMiddleware([]string{"https://app.dev"})(echoUser())

    r := httptest.NewRequest("OPTIONS", "/api/chats", nil)
    r.Header.Set("Origin", "https://app.dev")
    r.Header.Set("Access-Control-Request-Method", "POST")
    w := httptest.NewRecorder()
    h.ServeHTTP(w, r)
    assert.Equal(t, http.StatusNoContent, w.Code)
    assert.Equal(t, "https://app.dev", w.Header().Get("Access-Control-Allow-Origin"))

    r = httptest.NewRequest("GET", "/api/chats", nil)
    r.Header.Set("Origin", "https://evil.dev")
    w = httptest.NewRecorder()
    h.ServeHTTP(w, r)
    assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverPanic(t *testing.T) {
    h := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        panic("boom")
    }))
    w := httptest.NewRecorder()
    h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
    assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoggingMiddlewareKeepsFlusher(t *testing.T) {
    var flushed bool
    h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        f, ok := w.(http.Flusher)
        flushed = ok
        if ok {
            f.Flush()
        }
        w.WriteHeader(http.StatusAccepted)
    }))
    w := httptest.NewRecorder()
    h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
    assert.True(t, flushed)
}
