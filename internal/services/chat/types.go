// File: internal/services/chat/types.go
package chat

import (
    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/services/parts"
)

// Logger defines the logging interface used across chat services
type Logger interface {
    Info(msg string, keysAndValues ...interface{})
    Error(msg string, keysAndValues ...interface{})
    Debug(msg string, keysAndValues ...interface{})
    Warn(msg string, keysAndValues ...interface{})
}

// Request is one generation turn.
type Request struct {
    // History ends with the user message being answered.
    History  []domain.Message
    OnFinish func(Result)
}

// Result is handed to OnFinish once the stream has completed without error.
type Result struct {
    Text         string
    Parts        domain.Parts
    FinishReason parts.FinishReason
    Steps        int
}
