// File: internal/services/chat_service.go
package services

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/iyunix/go-visionai/internal/domain"
    "github.com/iyunix/go-visionai/internal/repository/chat"
    "github.com/iyunix/go-visionai/internal/repository/message"
    "github.com/iyunix/go-visionai/internal/repository/project"
    chatservice "github.com/iyunix/go-visionai/internal/services/chat"
    "github.com/iyunix/go-visionai/internal/services/chatcache"
    "github.com/iyunix/go-visionai/internal/services/logging"
    "github.com/iyunix/go-visionai/internal/services/parts"
    "github.com/iyunix/go-visionai/internal/services/tools"
)

// libraryScanLimit bounds how many recent messages the library scans.
const libraryScanLimit = 500

// Generator runs one generation turn. *chatservice.Orchestrator implements it.
type Generator interface {
    Generate(ctx context.Context, req chatservice.Request) (<-chan parts.Event, <-chan error)
}

type ChatService struct {
    config      *chatservice.Config
    chatRepo    chat.ChatRepository
    messageRepo message.MessageRepository
    projectRepo project.ProjectRepository
    generator   Generator
    listings    *chatcache.Cache
    reconciler  *parts.Reconciler
    logger      logging.Logger
}

func NewChatService(
    config *chatservice.Config,
    chatRepo chat.ChatRepository,
    messageRepo message.MessageRepository,
    projectRepo project.ProjectRepository,
    generator Generator,
    listings *chatcache.Cache,
    logger logging.Logger,
) (*ChatService, error) {
    // Validate dependencies
    if chatRepo == nil {
        return nil, chatservice.NewValidationError("constructor", "chat repository is required")
    }
    if messageRepo == nil {
        return nil, chatservice.NewValidationError("constructor", "message repository is required")
    }
    if projectRepo == nil {
        return nil, chatservice.NewValidationError("constructor", "project repository is required")
    }
    if generator == nil {
        return nil, chatservice.NewValidationError("constructor", "generator is required")
    }
    if config == nil {
        config = chatservice.DefaultConfig()
    }
    if err := config.Validate(); err != nil {
        return nil, chatservice.NewValidationError("config", err.Error())
    }
    if listings == nil {
        listings = chatcache.NewDefault()
    }
    if logger == nil {
        logger = &logging.NoOpLogger{}
    }

    return &ChatService{
        config:      config,
        chatRepo:    chatRepo,
        messageRepo: messageRepo,
        projectRepo: projectRepo,
        generator:   generator,
        listings:    listings,
        reconciler:  parts.NewReconciler(),
        logger:      logger,
    }, nil
}

// Basic chat operations

// ListChats returns the chats that are not on a project, newest first.
// A warm listing is served from the cache.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
    if cached, ok := s.listings.Chats(userID); ok {
        return cached, nil
    }
    tok := s.listings.Token(userID)
    summaries, err := s.chatRepo.FindUnassignedByUserID(ctx, userID)
    if err != nil {
        return nil, chatservice.NewPersistenceError("list_chats", "could not list chats", err)
    }
    s.listings.SetChats(userID, tok, summaries)
    return summaries, nil
}

func (s *ChatService) CreateChat(ctx context.Context, userID string) (*domain.Chat, error) {
    created, err := s.chatRepo.Create(ctx, &domain.Chat{UserID: userID})
    if err != nil {
        return nil, chatservice.NewPersistenceError("create_chat", "could not create chat", err)
    }
    s.listings.Invalidate(userID)
    return created, nil
}

// GetChat returns the chat with its messages in ascending order.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID string) (*domain.Chat, error) {
    c, err := s.chatRepo.FindWithMessages(ctx, chatID, userID)
    if err != nil {
        return nil, s.mapChatError("get_chat", userID, chatID, err)
    }
    return c, nil
}

// AddMessage appends a message to the chat. A bare text message becomes a single text part.
func (s *ChatService) AddMessage(ctx context.Context, userID, chatID, role, text string, ps domain.Parts) (*domain.Message, error) {
    if len(ps) == 0 {
        if strings.TrimSpace(text) == "" {
            return nil, chatservice.NewValidationError("add_message", "Message text or parts are required")
        }
        ps = domain.Parts{domain.TextPart{Text: text}}
    }
    if err := ps.Validate(); err != nil {
        return nil, chatservice.NewValidationError("add_message", err.Error())
    }
    if err := s.ensureOwner(ctx, "add_message", userID, chatID); err != nil {
        return nil, err
    }

    saved, err := s.messageRepo.Create(ctx, domain.NewMessage(chatID, domain.ParseRole(role), ps))
    if err != nil {
        return nil, chatservice.NewPersistenceError("add_message", "could not save message", err)
    }
    if err := s.chatRepo.TouchUpdatedAt(ctx, chatID); err != nil {
        s.logger.Warn("could not touch chat", "chat_id", chatID, "error", err)
    }
    s.listings.Invalidate(userID)
    return saved, nil
}

// ChatUpdate carries the optional fields of a chat patch. SetProject is true
// when the request named projectId, even as null.
type ChatUpdate struct {
    SetProject bool
    ProjectID  *string
    Title      *string
}

func (s *ChatService) UpdateChat(ctx context.Context, userID, chatID string, upd ChatUpdate) (*domain.Chat, error) {
    if !upd.SetProject && upd.Title == nil {
        return nil, chatservice.NewValidationError("update_chat", "nothing to update")
    }

    if upd.Title != nil {
        if strings.TrimSpace(*upd.Title) == "" {
            return nil, chatservice.NewValidationError("update_chat", "title cannot be empty")
        }
        if err := s.chatRepo.UpdateTitle(ctx, chatID, userID, *upd.Title); err != nil {
            return nil, s.mapChatError("update_chat", userID, chatID, err)
        }
        s.listings.Invalidate(userID)
    }

    if upd.SetProject {
        projectID := upd.ProjectID
        if projectID != nil && strings.TrimSpace(*projectID) == "" {
            projectID = nil
        }
        if projectID != nil {
            if _, err := s.projectRepo.FindByIDAndUserID(ctx, *projectID, userID); err != nil {
                if errors.Is(err, project.ErrProjectNotFound) {
                    return nil, chatservice.NewNotFoundError("update_chat", "Project not found")
                }
                return nil, chatservice.NewPersistenceError("update_chat", "could not load project", err)
            }
        }
        updated, err := s.chatRepo.AssignProject(ctx, chatID, userID, projectID)
        if err != nil {
            return nil, s.mapChatError("update_chat", userID, chatID, err)
        }
        s.listings.Invalidate(userID)
        return updated, nil
    }

    c, err := s.chatRepo.FindByIDAndUserID(ctx, chatID, userID)
    if err != nil {
        return nil, s.mapChatError("update_chat", userID, chatID, err)
    }
    return c, nil
}

func (s *ChatService) DeleteChat(ctx context.Context, userID, chatID string) error {
    if err := s.chatRepo.Delete(ctx, chatID, userID); err != nil {
        return s.mapChatError("delete_chat", userID, chatID, err)
    }
    s.listings.Invalidate(userID)
    return nil
}

// MessageView is one message reconciled for display.
type MessageView struct {
    ID        string      `json:"id"`
    Role      domain.Role `json:"role"`
    CreatedAt time.Time   `json:"createdAt"`
    View      parts.View  `json:"view"`
}

// ViewChat renders every message of the chat through the shared reconciler.
func (s *ChatService) ViewChat(ctx context.Context, userID, chatID string, mode parts.Mode) ([]MessageView, error) {
    c, err := s.GetChat(ctx, userID, chatID)
    if err != nil {
        return nil, err
    }
    views := make([]MessageView, 0, len(c.Messages))
    for i := range c.Messages {
        m := &c.Messages[i]
        views = append(views, MessageView{
            ID:        m.ID,
            Role:      m.Role,
            CreatedAt: m.CreatedAt,
            View:      s.reconciler.Reconcile(m.PartList(), mode),
        })
    }
    return views, nil
}

// Search matches titles and message parts. An empty query returns no results.
func (s *ChatService) Search(ctx context.Context, userID, query string) ([]domain.SearchResult, error) {
    query = strings.TrimSpace(query)
    if query == "" {
        return []domain.SearchResult{}, nil
    }
    if len(query) > chat.MaxSearchLength {
        return nil, chatservice.NewValidationError("search", fmt.Sprintf("Search query must be at most %d characters", chat.MaxSearchLength))
    }
    results, err := s.chatRepo.Search(ctx, userID, query, chat.MaxSearchResults)
    if err != nil {
        return nil, chatservice.NewPersistenceError("search", "could not search chats", err)
    }
    return results, nil
}

// LibraryItem is one image the user uploaded or generated.
type LibraryItem struct {
    URL       string    `json:"url"`
    Kind      string    `json:"kind"`
    MediaType string    `json:"mediaType,omitempty"`
    Filename  string    `json:"filename,omitempty"`
    Prompt    string    `json:"prompt,omitempty"`
    PublicID  string    `json:"publicId,omitempty"`
    ChatID    string    `json:"chatId"`
    MessageID string    `json:"messageId"`
    CreatedAt time.Time `json:"createdAt"`
}

const (
    LibraryUploaded  = "uploaded"
    LibraryGenerated = "generated"
)

// Library lists image attachments and generated images, newest message first.
func (s *ChatService) Library(ctx context.Context, userID string) ([]LibraryItem, error) {
    msgs, err := s.messageRepo.FindByUserID(ctx, userID, libraryScanLimit)
    if err != nil {
        return nil, chatservice.NewPersistenceError("library", "could not load messages", err)
    }

    items := []LibraryItem{}
    seen := make(map[string]bool)
    for i := range msgs {
        m := &msgs[i]
        for _, p := range m.PartList() {
            item, ok := libraryItem(p)
            if !ok || seen[item.URL] {
                continue
            }
            seen[item.URL] = true
            item.ChatID = m.ChatID
            item.MessageID = m.ID
            item.CreatedAt = m.CreatedAt
            items = append(items, item)
        }
    }
    return items, nil
}

func libraryItem(p domain.Part) (LibraryItem, bool) {
    switch v := p.(type) {
    case domain.FilePart:
        if v.URL == "" || !v.IsImage() {
            return LibraryItem{}, false
        }
        return LibraryItem{URL: v.URL, Kind: LibraryUploaded, MediaType: v.MediaType, Filename: v.Filename}, true
    case domain.ToolPart:
        if v.ToolName != tools.GenerateImageName || v.State != domain.ToolStateOutputAvailable {
            return LibraryItem{}, false
        }
        var out tools.ImageOutput
        if err := json.Unmarshal(v.Output, &out); err != nil || out.Image == "" {
            return LibraryItem{}, false
        }
        return LibraryItem{URL: out.Image, Kind: LibraryGenerated, MediaType: "image/png", Prompt: out.Prompt, PublicID: out.PublicID}, true
    }
    return LibraryItem{}, false
}

// Streaming functionality

// GenerateInput is one generation request: the client-held history, newest last.
type GenerateInput struct {
    ChatID   string
    Messages []domain.Message
}

// Generate persists the latest user message, then starts the model/tool loop.
// When the stream completes, the assistant message is saved and the title
// is updated from it. Persistence is skipped when no chat id is given.
func (s *ChatService) Generate(ctx context.Context, userID string, in GenerateInput) (<-chan parts.Event, <-chan error, error) {
    if len(in.Messages) == 0 {
        return nil, nil, chatservice.NewValidationError("generate", "messages are required")
    }

    latest := latestUserMessage(in.Messages)
    if latest != nil {
        if err := latest.PartList().Validate(); err != nil {
            return nil, nil, chatservice.NewValidationError("generate", err.Error())
        }
    }

    if in.ChatID != "" {
        if err := s.ensureOwner(ctx, "generate", userID, in.ChatID); err != nil {
            return nil, nil, err
        }
        if latest != nil {
            if _, err := s.messageRepo.Create(ctx, domain.NewMessage(in.ChatID, domain.RoleUser, latest.PartList())); err != nil {
                return nil, nil, chatservice.NewPersistenceError("generate", "could not save user message", err)
            }
        }
    }

    genCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
    events, errc := s.generator.Generate(genCtx, chatservice.Request{
        History: in.Messages,
        OnFinish: func(result chatservice.Result) {
            s.logger.Info("generation complete",
                "chat_id", in.ChatID,
                "finish_reason", result.FinishReason,
                "steps", result.Steps,
                "parts", len(result.Parts))
            if in.ChatID != "" {
                s.saveAssistantTurn(userID, in.ChatID, result)
            }
        },
    })

    out := make(chan error, 1)
    go func() {
        defer cancel()
        defer close(out)
        if err, ok := <-errc; ok && err != nil {
            out <- err
        }
    }()
    return events, out, nil
}

// saveAssistantTurn runs on its own context: the request may already be gone.
func (s *ChatService) saveAssistantTurn(userID, chatID string, result chatservice.Result) {
    ctx, cancel := context.WithTimeout(context.Background(), s.config.SaveTimeout)
    defer cancel()

    if len(result.Parts) == 0 {
        s.logger.Warn("assistant turn produced no parts", "chat_id", chatID)
        return
    }
    if _, err := s.messageRepo.Create(ctx, domain.NewMessage(chatID, domain.RoleAssistant, result.Parts)); err != nil {
        s.logger.Error("failed to save assistant message", "chat_id", chatID, "error", err)
        return
    }

    if title, ok := parts.DeriveTitle(result.Parts); ok {
        if err := s.chatRepo.UpdateTitle(ctx, chatID, userID, title); err != nil {
            s.logger.Error("failed to update chat title", "chat_id", chatID, "error", err)
        }
    }
    if err := s.chatRepo.TouchUpdatedAt(ctx, chatID); err != nil {
        s.logger.Warn("could not touch chat", "chat_id", chatID, "error", err)
    }
    s.listings.Invalidate(userID)
}

func latestUserMessage(msgs []domain.Message) *domain.Message {
    for i := len(msgs) - 1; i >= 0; i-- {
        if msgs[i].Role == domain.RoleUser {
            return &msgs[i]
        }
    }
    return nil
}

func (s *ChatService) ensureOwner(ctx context.Context, op, userID, chatID string) error {
    ok, err := s.chatRepo.ExistsByIDAndUserID(ctx, chatID, userID)
    if err != nil {
        return chatservice.NewPersistenceError(op, "could not load chat", err)
    }
    if !ok {
        return chatservice.NewNotFoundError(op, "Chat not found")
    }
    return nil
}

// mapChatError hides whether a chat exists for another user: both read as not found.
func (s *ChatService) mapChatError(op, userID, chatID string, err error) error {
    switch {
    case errors.Is(err, chat.ErrChatNotFound), errors.Is(err, chat.ErrUnauthorizedAccess):
        s.logger.Debug("chat not accessible", "op", op, "user_id", userID, "chat_id", chatID)
        return chatservice.NewNotFoundError(op, "Chat not found")
    default:
        return chatservice.NewPersistenceError(op, "chat operation failed", err)
    }
}
