// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	DatabasePath   string
	JWTSecretKey   string
	AllowedOrigins []string

	// Model endpoint. LLMAPIKeys may hold several keys; one is picked per request.
	LLMAPIKeys        []string
	LLMBaseURL        string
	LLMModel          string
	MaxOutputTokens   int
	GenerationTimeout time.Duration

	TavilyAPIKey   string
	NebiusAPIKey   string
	DeepgramAPIKey string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Generation requests allowed per user per minute.
	GenerateRateLimit int

	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "visionai.db"),
		JWTSecretKey:   getEnv("JWT_SECRET_KEY", ""),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),

		LLMAPIKeys: getEnvAsList("LLM_API_KEYS", nil),
		// Gemini's OpenAI-compatible endpoint.
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash-lite"),
		MaxOutputTokens:   getEnvAsInt("MAX_OUTPUT_TOKENS", 8192),
		GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 30*time.Second),

		TavilyAPIKey:   getEnv("TAVILY_API_KEY", ""),
		NebiusAPIKey:   getEnv("NEBIUS_API_KEY", ""),
		DeepgramAPIKey: getEnv("DEEPGRAM_API_KEY", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		GenerateRateLimit: getEnvAsInt("GENERATE_RATE_LIMIT", 20),
		Environment:       env,
	}

	if isProduction(env) {
		if missing := cfg.MissingRequired(); len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// MissingRequired lists the variables a production deployment cannot run without.
// Tool keys are not listed: a tool whose key is absent fails its own calls.
func (c *Config) MissingRequired() []string {
	missing := []string{}
	if c.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(c.LLMAPIKeys) == 0 {
		missing = append(missing, "LLM_API_KEYS")
	}
	if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME/CLOUDINARY_API_KEY/CLOUDINARY_API_SECRET")
	}
	return missing
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil || d <= 0 {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
