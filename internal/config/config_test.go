package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("LLM_API_KEYS", "k1, ,k2")
	t.Setenv("GENERATION_TIMEOUT", "45s")
	t.Setenv("MAX_OUTPUT_TOKENS", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"k1", "k2"}, cfg.LLMAPIKeys)
	assert.Equal(t, 45*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 8192, cfg.MaxOutputTokens)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.LLMModel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestMissingRequired(t *testing.T) {
	cfg := &Config{}
	assert.Len(t, cfg.MissingRequired(), 3)

	cfg = &Config{
		JWTSecretKey:        "s",
		LLMAPIKeys:          []string{"k"},
		CloudinaryCloudName: "c",
		CloudinaryAPIKey:    "k",
		CloudinaryAPISecret: "s",
	}
	assert.Empty(t, cfg.MissingRequired())
}
