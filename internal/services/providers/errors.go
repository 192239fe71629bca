// File: internal/services/providers/errors.go
package providers

import (
    "errors"
    "fmt"
)

type ErrorType string

const (
    ErrTypeConfig     ErrorType = "CONFIG"
    ErrTypeNetwork    ErrorType = "NETWORK"
    ErrTypeProvider   ErrorType = "PROVIDER"
    ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
    ErrTypeValidation ErrorType = "VALIDATION"
)

type ProviderError struct {
    Provider string
    Type     ErrorType
    Code     int
    Message  string
    Cause    error
}

func (e *ProviderError) Error() string {
    if e.Cause != nil {
        return fmt.Sprintf("%s %s error: %s (caused by: %v)", e.Provider, e.Type, e.Message, e.Cause)
    }
    return fmt.Sprintf("%s %s error: %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// IsConfigError reports whether err is a missing-configuration failure.
func IsConfigError(err error) bool {
    var pe *ProviderError
    return errors.As(err, &pe) && pe.Type == ErrTypeConfig
}

// Reason is the short message shown to the model and the user.
func Reason(err error) string {
    var pe *ProviderError
    if errors.As(err, &pe) {
        return pe.Message
    }
    return err.Error()
}
