package chat

import (
    "context"

    "github.com/iyunix/go-visionai/internal/domain"
)

// ChatRepository handles chat data operations. Every read and write is scoped to the owning user.
type ChatRepository interface {
    Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
    FindByIDAndUserID(ctx context.Context, chatID, userID string) (*domain.Chat, error)
    FindWithMessages(ctx context.Context, chatID, userID string) (*domain.Chat, error)
    FindUnassignedByUserID(ctx context.Context, userID string) ([]domain.ChatSummary, error)
    FindByProjectID(ctx context.Context, projectID, userID string) ([]domain.ChatSummary, error)
    ExistsByIDAndUserID(ctx context.Context, chatID, userID string) (bool, error)
    UpdateTitle(ctx context.Context, chatID, userID, title string) error
    AssignProject(ctx context.Context, chatID, userID string, projectID *string) (*domain.Chat, error)
    TouchUpdatedAt(ctx context.Context, chatID string) error
    Delete(ctx context.Context, chatID, userID string) error
    Search(ctx context.Context, userID, term string, limit int) ([]domain.SearchResult, error)
}
