// File: internal/handlers/media_handler.go
package handlers

import (
    "net/http"

    "github.com/iyunix/go-visionai/internal/services"
)

type MediaHandler struct {
    MediaService *services.MediaService
}

func NewMediaHandler(ms *services.MediaService) *MediaHandler {
    return &MediaHandler{MediaService: ms}
}

// Transcribe turns base64 audio from the voice input into text.
func (h *MediaHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
    if _, ok := requireUser(w, r); !ok {
        return
    }

    var req struct {
        AudioData string `json:"audioData"`
    }
    if !decodeJSON(w, r, &req) {
        return
    }

    transcript, err := h.MediaService.Transcribe(r.Context(), req.AudioData)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

// Signature signs a direct browser upload.
func (h *MediaHandler) Signature(w http.ResponseWriter, r *http.Request) {
    if _, ok := requireUser(w, r); !ok {
        return
    }

    sig, err := h.MediaService.Signature(r.URL.Query().Get("folder"))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]interface{}{"data": sig})
}
