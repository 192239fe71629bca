// File: internal/handlers/generate_handler.go
package handlers

import (
    "encoding/json"
    "fmt"
    "log"
    "net/http"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services"
    "github.com/iyunix/go-visionai/internal/services/parts"
)

type GenerateHandler struct {
    ChatService *services.ChatService
}

func NewGenerateHandler(cs *services.ChatService) *GenerateHandler {
    return &GenerateHandler{ChatService: cs}
}

type generateRequest struct {
    ChatID        string           `json:"chatId"`
    Messages      []domain.Message `json:"messages"`
    SendReasoning *bool            `json:"sendReasoning"`
    SendSources   *bool            `json:"sendSources"`
}

// setSSEHeaders sets headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    w.Header().Set("X-Accel-Buffering", "no")
    w.Header().Set("X-Vercel-AI-UI-Message-Stream", "v1")
}

// Generate streams the part events of one assistant turn as SSE, ending with [DONE].
// Errors found before the stream starts are plain JSON responses.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
    userID, ok := requireUser(w, r)
    if !ok {
        return
    }

    var req generateRequest
    if !decodeJSON(w, r, &req) {
        return
    }

    flusher, ok := w.(http.Flusher)
    if !ok {
        writeError(w, "Streaming unsupported", http.StatusInternalServerError)
        return
    }

    events, errc, err := h.ChatService.Generate(r.Context(), userID, services.GenerateInput{
        ChatID:   req.ChatID,
        Messages: req.Messages,
    })
    if err != nil {
        writeServiceError(w, err)
        return
    }

    sendReasoning := req.SendReasoning == nil || *req.SendReasoning
    sendSources := req.SendSources == nil || *req.SendSources

    setSSEHeaders(w)
    w.WriteHeader(http.StatusOK)
    flusher.Flush()

    writeFailed := false
    for ev := range events {
        if writeFailed {
            // read to the end so the generator goroutine can exit; a disconnect
            // cancels its context and the turn is not persisted
            continue
        }
        if !sendReasoning && ev.IsReasoning() {
            continue
        }
        if !sendSources && ev.Type == parts.EventSource {
            continue
        }
        if err := writeEvent(w, ev); err != nil {
            log.Printf("[GenerateHandler] Client write failed for chat %s: %v", req.ChatID, err)
            writeFailed = true
            continue
        }
        flusher.Flush()
    }

    if err := <-errc; err != nil {
        log.Printf("[GenerateHandler] Generation failed for chat %s: %v", req.ChatID, err)
    }
    if !writeFailed {
        fmt.Fprint(w, "data: [DONE]\n\n")
        flusher.Flush()
    }
}

func writeEvent(w http.ResponseWriter, ev parts.Event) error {
    data, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    _, err = fmt.Fprintf(w, "data: %s\n\n", data)
    return err
}
