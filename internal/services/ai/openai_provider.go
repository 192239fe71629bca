// File: internal/services/ai/openai_provider.go
package ai

import (
    "context"
    "math/rand/v2"
    "net/http"

    openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to any OpenAI-compatible endpoint, Gemini's included.
type OpenAIProvider struct {
    config  *Config
    clients []*openai.Client
    pick    func(n int) int
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
    if err := config.Validate(); err != nil {
        return nil, NewConfigError(err.Error())
    }

    httpClient := &http.Client{Timeout: config.Timeout}
    clients := make([]*openai.Client, 0, len(config.APIKeys))
    for _, key := range config.APIKeys {
        llmConfig := openai.DefaultConfig(key)
        if config.BaseURL != "" {
            llmConfig.BaseURL = config.BaseURL
        }
        llmConfig.HTTPClient = httpClient
        clients = append(clients, openai.NewClientWithConfig(llmConfig))
    }

    return &OpenAIProvider{
        config:  config,
        clients: clients,
        pick:    rand.IntN,
    }, nil
}

func (p *OpenAIProvider) Model() string { return p.config.Model }

// StreamChat spreads load across the configured keys by picking one at random per call.
func (p *OpenAIProvider) StreamChat(ctx context.Context, req openai.ChatCompletionRequest) (ChatStream, error) {
    if req.Model == "" {
        req.Model = p.config.Model
    }
    if req.MaxCompletionTokens == 0 && req.MaxTokens == 0 {
        req.MaxTokens = p.config.MaxOutputTokens
    }
    req.Stream = true

    client := p.clients[p.pick(len(p.clients))]
    stream, err := client.CreateChatCompletionStream(ctx, req)
    if err != nil {
        aiErr := NewProviderError("streaming", "failed to create stream", err)
        aiErr.Model = req.Model
        return nil, aiErr
    }
    return stream, nil
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
    if len(p.clients) == 0 {
        return NewConfigError("no API keys configured")
    }
    return nil
}

func (p *OpenAIProvider) GetStatus(ctx context.Context) ProviderStatus {
    healthy := p.HealthCheck(ctx) == nil
    msg := "LLM provider healthy"
    if !healthy {
        msg = "LLM provider not configured"
    }
    return ProviderStatus{
        IsHealthy: healthy,
        Model:     p.config.Model,
        Keys:      len(p.clients),
        Message:   msg,
    }
}
