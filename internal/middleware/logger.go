// File: internal/middleware/logger.go
package middleware

import (
    "log"
    "net/http"
    "time"
)

// LoggingMiddleware logs incoming HTTP request & response details.
func LoggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

        next.ServeHTTP(wrapper, r)

        log.Printf(
            "Request: %s %s from %s | Status: %d | Duration: %v",
            r.Method,
            r.RequestURI,
            r.RemoteAddr,
            wrapper.statusCode,
            time.Since(start),
        )
    })
}

// responseWriter wraps http.ResponseWriter to capture the status code.
// It forwards Flush so streamed responses keep working behind it.
type responseWriter struct {
    http.ResponseWriter
    statusCode  int
    wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
    if !rw.wroteHeader {
        rw.statusCode = code
        rw.wroteHeader = true
    }
    rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
    rw.wroteHeader = true
    return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
    if f, ok := rw.ResponseWriter.(http.Flusher); ok {
        f.Flush()
    }
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
    return rw.ResponseWriter
}
