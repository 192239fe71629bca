// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-visionai/internal/domain"
)

// MessageRepository defines the interface for message data operations.
// Messages are append-only: there is no update.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error)
	FindByChatIDWithPagination(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, int64, error)
	FindByUserID(ctx context.Context, userID string, limit int) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID string) (int64, error)
}
