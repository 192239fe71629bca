// File: internal/services/ai/config.go
package ai

import (
    "fmt"
    "time"
)

type Config struct {
    // LLM Configuration. One key is drawn at random per request.
    APIKeys []string
    BaseURL string
    Model   string

    // Performance Configuration
    Timeout time.Duration

    // Model Parameters
    Temperature     float32
    MaxOutputTokens int
}

func (c *Config) Validate() error {
    if len(c.APIKeys) == 0 {
        return fmt.Errorf("LLM_API_KEYS is required")
    }
    if c.Model == "" {
        return fmt.Errorf("LLM_MODEL is required")
    }
    if c.Timeout <= 0 {
        return fmt.Errorf("timeout must be positive")
    }
    if c.MaxOutputTokens <= 0 {
        return fmt.Errorf("max output tokens must be positive")
    }
    return nil
}

func DefaultConfig() *Config {
    return &Config{
        Timeout:         30 * time.Second,
        Temperature:     0.7,
        MaxOutputTokens: 8192,
    }
}
