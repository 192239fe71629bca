// File: cmd/server/app.go
package main

import (
    "fmt"
    "net/http"

    "gorm.io/gorm"

    "github.com/iyunix/go-visionai/internal/config"
    "github.com/iyunix/go-visionai/internal/handlers"
    "github.com/iyunix/go-visionai/internal/middleware"
    "github.com/iyunix/go-visionai/internal/ratelimit"
    "github.com/iyunix/go-visionai/internal/repository/chat"
    "github.com/iyunix/go-visionai/internal/repository/message"
    "github.com/iyunix/go-visionai/internal/repository/project"
    "github.com/iyunix/go-visionai/internal/services"
    "github.com/iyunix/go-visionai/internal/services/ai"
    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
    "github.com/iyunix/go-visionai/internal/services/chatcache"
    "github.com/iyunix/go-visionai/internal/services/logging"
    "github.com/iyunix/go-visionai/internal/services/media"
    "github.com/iyunix/go-visionai/internal/services/providers"
    "github.com/iyunix/go-visionai/internal/services/tools"
)

// Application aggregates the services and the HTTP handler built from them.
type Application struct {
    Config         *config.Config
    Logger         logging.Logger
    Provider       *ai.OpenAIProvider
    Tools          *tools.Registry
    ChatService    *services.ChatService
    ProjectService *services.ProjectService
    MediaService   *services.MediaService
    Limiter        *ratelimit.MemoryRateLimiter
    Handler        http.Handler
}

// Provider functions

func ProvideAIConfig(cfg *config.Config) *ai.Config {
    aiConfig := ai.DefaultConfig()
    aiConfig.APIKeys = cfg.LLMAPIKeys
    aiConfig.BaseURL = cfg.LLMBaseURL
    aiConfig.Model = cfg.LLMModel
    aiConfig.Timeout = cfg.GenerationTimeout
    aiConfig.MaxOutputTokens = cfg.MaxOutputTokens
    return aiConfig
}

func ProvideChatConfig(cfg *config.Config) *chatservice.Config {
    chatConfig := chatservice.DefaultConfig()
    chatConfig.Model = cfg.LLMModel
    chatConfig.MaxOutputTokens = cfg.MaxOutputTokens
    chatConfig.Timeout = cfg.GenerationTimeout
    return chatConfig
}

// ProvideToolRegistry wires the four tools. Clients are built even without
// keys so that a call reports the missing key instead of the server refusing to start.
func ProvideToolRegistry(cfg *config.Config, store *media.CloudinaryStore) *tools.Registry {
    tavily := providers.NewTavilyClient(providers.Config{APIKey: cfg.TavilyAPIKey})
    nebius := providers.NewNebiusClient(providers.Config{APIKey: cfg.NebiusAPIKey})
    deepgram := providers.NewDeepgramClient(providers.Config{APIKey: cfg.DeepgramAPIKey})
    return tools.NewDefaultRegistry(tavily, nebius, deepgram, store)
}

func InitializeApplication(cfg *config.Config, logger logging.Logger, db *gorm.DB) (*Application, error) {
    // Repositories
    chatRepo := chat.NewChatRepository(db)
    messageRepo := message.NewMessageRepository(db)
    projectRepo := project.NewProjectRepository(db)

    // Model and tools
    provider, err := ai.NewOpenAIProvider(ProvideAIConfig(cfg))
    if err != nil {
        return nil, fmt.Errorf("failed to initialize model provider: %w", err)
    }
    store, err := media.NewCloudinaryStore(media.Config{
        CloudName: cfg.CloudinaryCloudName,
        APIKey:    cfg.CloudinaryAPIKey,
        APISecret: cfg.CloudinaryAPISecret,
    })
    if err != nil {
        return nil, err
    }
    registry := ProvideToolRegistry(cfg, store)

    // Core services
    chatConfig := ProvideChatConfig(cfg)
    orchestrator := chatservice.NewOrchestrator(chatConfig, provider, registry, logger)
    listings := chatcache.NewDefault()

    chatService, err := services.NewChatService(chatConfig, chatRepo, messageRepo, projectRepo, orchestrator, listings, logger)
    if err != nil {
        return nil, fmt.Errorf("failed to initialize chat service: %w", err)
    }
    projectService := services.NewProjectService(projectRepo, chatRepo, listings, logger)
    deepgram := providers.NewDeepgramClient(providers.Config{APIKey: cfg.DeepgramAPIKey})
    mediaService := services.NewMediaService(deepgram, store, logger)

    // Handlers
    limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultGenerateConfig(cfg.GenerateRateLimit))
    router := (&handlers.Router{
        Chat:          handlers.NewChatHandler(chatService),
        Project:       handlers.NewProjectHandler(projectService),
        Generate:      handlers.NewGenerateHandler(chatService),
        Media:         handlers.NewMediaHandler(mediaService),
        Health:        handlers.NewHealthHandler(provider),
        Log:           handlers.NewLogHandler(logger),
        Auth:          middleware.NewJWTMiddleware([]byte(cfg.JWTSecretKey)),
        GenerateLimit: middleware.RateLimitMiddleware(limiter, "generate"),
    }).Build()

    // CORS sits outside the router so preflight requests never reach route matching.
    var handler http.Handler = router
    handler = middleware.LoggingMiddleware(handler)
    handler = middleware.CORSMiddleware(cfg.AllowedOrigins)(handler)
    handler = middleware.RecoverPanic(handler)

    return &Application{
        Config:         cfg,
        Logger:         logger,
        Provider:       provider,
        Tools:          registry,
        ChatService:    chatService,
        ProjectService: projectService,
        MediaService:   mediaService,
        Limiter:        limiter,
        Handler:        handler,
    }, nil
}
