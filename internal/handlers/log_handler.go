// File: internal/handlers/log_handler.go
package handlers

import (
    "net/http"
    "strings"

    "github.com/iyunix/go-visionai/internal/services/logging"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
    Level   string      `json:"level"`             // e.g., "info", "error", "warn"
    Message string      `json:"message"`           // The main log message
    Context interface{} `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

type LogHandler struct {
    Logger logging.Logger
}

func NewLogHandler(logger logging.Logger) *LogHandler {
    return &LogHandler{Logger: logger}
}

// LogFrontendEvent relays a browser log line into the server log.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
    var payload FrontendLogPayload
    if !decodeJSON(w, r, &payload) {
        return
    }
    if strings.TrimSpace(payload.Message) == "" {
        writeError(w, "message is required", http.StatusBadRequest)
        return
    }

    kv := []interface{}{"source", "client", "context", payload.Context}
    switch strings.ToLower(payload.Level) {
    case "error":
        h.Logger.Error(payload.Message, kv...)
    case "warn", "warning":
        h.Logger.Warn(payload.Message, kv...)
    case "debug":
        h.Logger.Debug(payload.Message, kv...)
    default:
        h.Logger.Info(payload.Message, kv...)
    }

    w.WriteHeader(http.StatusNoContent)
}
