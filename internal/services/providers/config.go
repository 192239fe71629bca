// File: internal/services/providers/config.go
package providers

import (
    "fmt"
    "time"
)

const (
    TavilyBaseURL   = "https://api.tavily.com"
    NebiusBaseURL   = "https://api.tokenfactory.nebius.com/v1"
    DeepgramBaseURL = "https://api.deepgram.com/v1"

    defaultTimeout = 25 * time.Second
)

// Config is shared by every upstream client. BaseURL is overridable for tests.
type Config struct {
    APIKey  string
    BaseURL string
    Timeout time.Duration
}

// Validate reports a missing key as a config error so callers can tell it apart
// from an upstream failure.
func (c *Config) Validate(envName string) error {
    if c.APIKey == "" {
        return &ProviderError{Type: ErrTypeConfig, Message: fmt.Sprintf("Missing %s", envName)}
    }
    if c.BaseURL == "" {
        return &ProviderError{Type: ErrTypeConfig, Message: "base URL is required"}
    }
    return nil
}

func withDefaults(c Config, baseURL string) Config {
    if c.BaseURL == "" {
        c.BaseURL = baseURL
    }
    if c.Timeout <= 0 {
        c.Timeout = defaultTimeout
    }
    return c
}
