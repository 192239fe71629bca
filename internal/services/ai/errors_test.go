package ai

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "testing"

    openai "github.com/sashabaranov/go-openai"
    "github.com/stretchr/testify/assert"
)

func TestNewProviderErrorClassifies(t *testing.T) {
    rate := NewProviderError("streaming", "x", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests})
    assert.Equal(t, ErrTypeRateLimit, rate.Type)
    assert.Equal(t, http.StatusTooManyRequests, rate.Code)

    cancelled := NewProviderError("streaming", "x", fmt.Errorf("wrapped: %w", context.Canceled))
    assert.Equal(t, ErrTypeCancelled, cancelled.Type)
    assert.True(t, errors.Is(cancelled, context.Canceled))

    model := NewProviderError("streaming", "x", &openai.RequestError{HTTPStatusCode: http.StatusNotFound})
    assert.Equal(t, ErrTypeModel, model.Type)

    plain := NewProviderError("streaming", "x", errors.New("boom"))
    assert.Equal(t, ErrTypeProvider, plain.Type)
    assert.NotEmpty(t, plain.UserMessage())
}

func TestConfigValidate(t *testing.T) {
    cfg := DefaultConfig()
    assert.Error(t, cfg.Validate())

    cfg.APIKeys = []string{"k"}
    cfg.Model = "gemini-2.5-flash-lite"
    assert.NoError(t, cfg.Validate())

    p, err := NewOpenAIProvider(cfg)
    assert.NoError(t, err)
    assert.True(t, p.GetStatus(context.Background()).IsHealthy)
    assert.Equal(t, "gemini-2.5-flash-lite", p.Model())
}
