// File: internal/services/media_service.go
package services

import (
    "context"
    "encoding/base64"
    "errors"
    "strings"

    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
    "github.com/iyunix/go-visionai/internal/services/logging"
    "github.com/iyunix/go-visionai/internal/services/media"
    "github.com/iyunix/go-visionai/internal/services/providers"
)

// Transcriber turns recorded audio into text. *providers.DeepgramClient implements it.
type Transcriber interface {
    Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// MediaService backs the voice input and direct-upload endpoints.
type MediaService struct {
    transcriber Transcriber
    signer      media.Signer
    logger      logging.Logger
}

func NewMediaService(transcriber Transcriber, signer media.Signer, logger logging.Logger) *MediaService {
    if logger == nil {
        logger = &logging.NoOpLogger{}
    }
    return &MediaService{transcriber: transcriber, signer: signer, logger: logger}
}

// Transcribe accepts base64 audio, optionally as a data URL, and returns its transcript.
func (s *MediaService) Transcribe(ctx context.Context, audioData string) (string, error) {
    mimeType, payload := splitDataURL(strings.TrimSpace(audioData))
    if payload == "" {
        return "", chatservice.NewValidationError("transcribe", "Audio data is required")
    }
    audio, err := base64.StdEncoding.DecodeString(payload)
    if err != nil {
        return "", chatservice.NewValidationError("transcribe", "Audio data must be base64 encoded")
    }
    if len(audio) == 0 {
        return "", chatservice.NewValidationError("transcribe", "Audio data is required")
    }

    transcript, err := s.transcriber.Transcribe(ctx, audio, mimeType)
    if err != nil {
        if providers.IsConfigError(err) {
            return "", chatservice.NewConfigError("transcribe", "Missing DEEPGRAM_API_KEY", err)
        }
        s.logger.Error("transcription failed", "error", err, "bytes", len(audio))
        return "", chatservice.NewUpstreamError("transcribe", providers.Reason(err), err)
    }
    return transcript, nil
}

// Signature signs a direct browser upload into folder.
func (s *MediaService) Signature(folder string) (*media.Signature, error) {
    sig, err := s.signer.Sign(strings.TrimSpace(folder))
    if err != nil {
        if errors.Is(err, media.ErrNotConfigured) {
            return nil, chatservice.NewConfigError("signature", "Media host is not configured", err)
        }
        return nil, chatservice.NewUpstreamError("signature", "Failed to generate signature", err)
    }
    return sig, nil
}

// splitDataURL separates "data:audio/ogg;base64,XXXX" into its media type and payload.
// Plain base64 is returned with an empty media type.
func splitDataURL(s string) (string, string) {
    if !strings.HasPrefix(s, "data:") {
        return "", s
    }
    header, payload, ok := strings.Cut(s, ",")
    if !ok {
        return "", ""
    }
    mimeType := strings.TrimPrefix(header, "data:")
    mimeType, _, _ = strings.Cut(mimeType, ";")
    return mimeType, payload
}
