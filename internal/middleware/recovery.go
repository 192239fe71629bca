// File: internal/middleware/recovery.go
package middleware

import (
    "log"
    "net/http"
    "runtime/debug"
)

func RecoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if err := recover(); err != nil {
                if err == http.ErrAbortHandler {
                    panic(err)
                }
                log.Printf("[PANIC] %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())

                w.Header().Set("Connection", "close")
                w.Header().Set("Content-Type", "application/json")
                w.WriteHeader(http.StatusInternalServerError)
                w.Write([]byte(`{"error":"Something went wrong on our end."}`))
            }
        }()

        next.ServeHTTP(w, r)
    })
}
