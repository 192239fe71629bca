// File: internal/services/tools/errors.go
package tools

import (
    "errors"
    "fmt"
)

type ErrorType string

const (
    ErrTypeConfig    ErrorType = "CONFIG"
    ErrTypeInput     ErrorType = "INPUT"
    ErrTypeExecution ErrorType = "EXECUTION"
    ErrTypeUnknown   ErrorType = "UNKNOWN_TOOL"
)

// ToolError is a hard failure: it aborts the generation step.
type ToolError struct {
    Type    ErrorType
    Tool    string
    Message string
    Cause   error
}

func (e *ToolError) Error() string {
    if e.Cause != nil {
        return fmt.Sprintf("Tool %s error in %s: %s (caused by: %v)", e.Type, e.Tool, e.Message, e.Cause)
    }
    return fmt.Sprintf("Tool %s error in %s: %s", e.Type, e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Cause }

// ConfigError reports missing configuration, such as an absent API key.
type ConfigError struct {
    Tool    string
    Message string
    Cause   error
}

func (e *ConfigError) Error() string {
    return fmt.Sprintf("Tool %s error in %s: %s", ErrTypeConfig, e.Tool, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// InputError reports arguments that failed decoding or validation. The tool never ran.
type InputError struct {
    Tool    string
    Message string
    Cause   error
}

func (e *InputError) Error() string {
    return fmt.Sprintf("Invalid input for tool %s: %s", e.Tool, e.Message)
}

func (e *InputError) Unwrap() error { return e.Cause }

// Failure is the soft-failure output a tool returns in place of its result.
// The model sees it as the tool's output and the UI renders it as an error callout.
type Failure struct {
    Success bool   `json:"success"`
    Error   string `json:"error"`
    Message string `json:"message,omitempty"`
    Prompt  string `json:"prompt,omitempty"`
    Text    string `json:"text,omitempty"`
}

func NewFailure(err error) *Failure {
    msg := "Unknown error"
    if err != nil && err.Error() != "" {
        msg = err.Error()
    }
    return &Failure{Error: msg}
}

// IsHard reports whether err must abort the request rather than become a tool error part.
func IsHard(err error) bool {
    if err == nil {
        return false
    }
    var inputErr *InputError
    return !errors.As(err, &inputErr)
}
