// File: internal/services/ai/interface.go
package ai

import (
    "context"

    openai "github.com/sashabaranov/go-openai"
)

// ProviderStatus represents AI provider health
type ProviderStatus struct {
    IsHealthy bool
    Model     string
    Keys      int
    Message   string
}

// ChatStream yields streamed completion chunks until io.EOF.
type ChatStream interface {
    Recv() (openai.ChatCompletionStreamResponse, error)
    Close() error
}

// ModelClient opens one streamed model step.
type ModelClient interface {
    StreamChat(ctx context.Context, req openai.ChatCompletionRequest) (ChatStream, error)
    Model() string
}

// Provider is the model client the server wires in.
type Provider interface {
    ModelClient
    HealthCheck(ctx context.Context) error
    GetStatus(ctx context.Context) ProviderStatus
}
