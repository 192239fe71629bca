// File: internal/services/chat/errors.go
package chat

import (
    "context"
    "errors"
    "fmt"

    "github.com/iyunix/go-visionai/internal/services/ai"
    "github.com/iyunix/go-visionai/internal/services/tools"
)

type ErrorType string

const (
    ErrTypeConfig       ErrorType = "CONFIG"
    ErrTypeValidation   ErrorType = "VALIDATION"
    ErrTypeStreaming    ErrorType = "STREAMING"
    ErrTypeTool         ErrorType = "TOOL"
    ErrTypePersistence  ErrorType = "PERSISTENCE"
    ErrTypeUnauthorized ErrorType = "UNAUTHORIZED"
    ErrTypeNotFound     ErrorType = "NOT_FOUND"
    ErrTypeUpstream     ErrorType = "UPSTREAM"
)

type ChatError struct {
    Type      ErrorType
    Operation string
    Message   string
    ChatID    string
    UserID    string
    Cause     error
}

func (e *ChatError) Error() string {
    if e.Cause != nil {
        return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
            e.Type, e.Operation, e.Message, e.Cause)
    }
    return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewConfigError(operation, msg string, cause error) *ChatError {
    return &ChatError{Type: ErrTypeConfig, Operation: operation, Message: msg, Cause: cause}
}

func NewUpstreamError(operation, msg string, cause error) *ChatError {
    return &ChatError{Type: ErrTypeUpstream, Operation: operation, Message: msg, Cause: cause}
}

func NewValidationError(operation, msg string) *ChatError {
    return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewStreamingError(operation, msg string, cause error) *ChatError {
    return &ChatError{Type: ErrTypeStreaming, Operation: operation, Message: msg, Cause: cause}
}

func NewToolError(operation, msg string, cause error) *ChatError {
    return &ChatError{Type: ErrTypeTool, Operation: operation, Message: msg, Cause: cause}
}

func NewPersistenceError(operation, msg string, cause error) *ChatError {
    return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

func NewUnauthorizedError(userID, chatID string) *ChatError {
    return &ChatError{
        Type:      ErrTypeUnauthorized,
        Operation: "authorization",
        Message:   "chat not found or unauthorized",
        UserID:    userID,
        ChatID:    chatID,
    }
}

func NewNotFoundError(operation, msg string) *ChatError {
    return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

// IsType reports whether err is a ChatError of type t.
func IsType(err error, t ErrorType) bool {
    var ce *ChatError
    return errors.As(err, &ce) && ce.Type == t
}

// UserMessage is the single error text shown to the end user for a failed generation.
func UserMessage(err error) string {
    var aiErr *ai.AIError
    var cfgErr *tools.ConfigError
    switch {
    case errors.Is(err, context.DeadlineExceeded):
        return "The response took too long. Please try again."
    case errors.Is(err, context.Canceled):
        return "The request was cancelled."
    case errors.As(err, &aiErr):
        return aiErr.UserMessage()
    case errors.As(err, &cfgErr):
        return cfgErr.Message
    case IsType(err, ErrTypeTool):
        return "A tool failed unexpectedly. Please try again."
    default:
        return "Something went wrong. Please try again."
    }
}
