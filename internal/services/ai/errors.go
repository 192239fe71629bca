// File: internal/services/ai/errors.go
package ai

import (
    "context"
    "errors"
    "fmt"
    "net/http"

    openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
    ErrTypeConfig    ErrorType = "CONFIG"
    ErrTypeNetwork   ErrorType = "NETWORK"
    ErrTypeProvider  ErrorType = "PROVIDER"
    ErrTypeRateLimit ErrorType = "RATE_LIMIT"
    ErrTypeModel     ErrorType = "MODEL"
    ErrTypeCancelled ErrorType = "CANCELLED"
)

type AIError struct {
    Type      ErrorType
    Code      int
    Message   string
    Model     string
    Operation string
    Cause     error
}

func (e *AIError) Error() string {
    if e.Cause != nil {
        return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
            e.Type, e.Operation, e.Message, e.Cause)
    }
    return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

func NewConfigError(msg string) *AIError {
    return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

// NewProviderError classifies cause by its HTTP status when the provider returned one.
func NewProviderError(operation, msg string, cause error) *AIError {
    e := &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}

    var apiErr *openai.APIError
    var reqErr *openai.RequestError
    switch {
    case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
        e.Type = ErrTypeCancelled
    case errors.As(cause, &apiErr):
        e.Code = apiErr.HTTPStatusCode
    case errors.As(cause, &reqErr):
        e.Code = reqErr.HTTPStatusCode
    }
    switch {
    case e.Code == http.StatusTooManyRequests:
        e.Type = ErrTypeRateLimit
    case e.Code == http.StatusNotFound || e.Code == http.StatusBadRequest:
        e.Type = ErrTypeModel
    }
    return e
}

// UserMessage is the text safe to show in the chat when generation fails.
func (e *AIError) UserMessage() string {
    switch e.Type {
    case ErrTypeRateLimit:
        return "The model is busy right now. Please try again in a moment."
    case ErrTypeCancelled:
        return "The request was cancelled."
    case ErrTypeConfig:
        return "The assistant is not configured."
    default:
        return "The model failed to respond. Please try again."
    }
}
