// File: internal/handlers/response.go
package handlers

import (
    "encoding/json"
    "errors"
    "io"
    "log"
    "net/http"

    "github.com/iyunix/go-visionai/internal/middleware"
    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
)

// maxBodyBytes bounds JSON request bodies; audio uploads arrive base64 encoded.
const maxBodyBytes = 25 << 20

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(data); err != nil {
        log.Printf("[Handlers] Failed to encode response: %v", err)
    }
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
    writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error to its status code. Internal
// failures are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, err error) {
    var ce *chatservice.ChatError
    if !errors.As(err, &ce) {
        log.Printf("[Handlers] Unexpected error: %v", err)
        writeError(w, "Internal server error", http.StatusInternalServerError)
        return
    }

    switch ce.Type {
    case chatservice.ErrTypeValidation:
        writeError(w, ce.Message, http.StatusBadRequest)
    case chatservice.ErrTypeNotFound:
        writeError(w, ce.Message, http.StatusNotFound)
    case chatservice.ErrTypeUnauthorized:
        writeError(w, "Unauthorized", http.StatusUnauthorized)
    case chatservice.ErrTypeConfig:
        log.Printf("[Handlers] Configuration error: %v", err)
        writeError(w, ce.Message, http.StatusInternalServerError)
    case chatservice.ErrTypeUpstream:
        log.Printf("[Handlers] Upstream error: %v", err)
        writeError(w, ce.Message, http.StatusBadGateway)
    default:
        log.Printf("[Handlers] Service error: %v", err)
        writeError(w, "Internal server error", http.StatusInternalServerError)
    }
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
    r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
    if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
        writeError(w, "Invalid request body", http.StatusBadRequest)
        return false
    }
    return true
}

// requireUser returns the authenticated user id or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
    userID, ok := middleware.UserIDFromContext(r.Context())
    if !ok {
        writeError(w, "Unauthorized", http.StatusUnauthorized)
        return "", false
    }
    return userID, true
}
