// File: internal/services/chat/config.go
package chat

import (
    "fmt"
    "time"
)

type Config struct {
    // Loop Configuration
    MaxSteps int // Model round-trips allowed per request

    // Model Configuration
    Model           string
    Temperature     float32
    MaxOutputTokens int

    // Performance Configuration
    Timeout     time.Duration // Whole generation request
    SaveTimeout time.Duration // Background persistence after the stream

    // Citation Configuration
    EnableSources bool
    MaxSources    int // 0 means every distinct source is kept
}

func (c *Config) Validate() error {
    if c.MaxSteps <= 0 {
        return fmt.Errorf("max_steps must be positive")
    }
    if c.MaxOutputTokens <= 0 {
        return fmt.Errorf("max_output_tokens must be positive")
    }
    if c.Temperature < 0 || c.Temperature > 2 {
        return fmt.Errorf("temperature must be between 0 and 2")
    }
    if c.Timeout <= 0 {
        return fmt.Errorf("timeout must be positive")
    }
    if c.SaveTimeout <= 0 {
        return fmt.Errorf("save_timeout must be positive")
    }
    return nil
}

func DefaultConfig() *Config {
    return &Config{
        MaxSteps:        10,
        Temperature:     0.7,
        MaxOutputTokens: 8192,
        Timeout:         30 * time.Second,
        SaveTimeout:     5 * time.Second,
        EnableSources:   true,
    }
}
