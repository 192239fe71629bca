// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iyunix/go-visionai/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

const maxPageSize = 1000

type gormMessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db, now: time.Now}
}

// Create assigns an id and a creation time strictly after the chat's latest message,
// so replay order equals save order even when two saves land in the same clock tick.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last domain.Message
		createdAt := r.now()
		err := tx.Where("chat_id = ?", message.ChatID).Order("created_at desc").Limit(1).Find(&last).Error
		if err != nil {
			return err
		}
		if last.ID != "" && !createdAt.After(last.CreatedAt) {
			createdAt = last.CreatedAt.Add(time.Microsecond)
		}
		message.CreatedAt = createdAt
		return tx.Create(message).Error
	})
	if err != nil {
		// Parts may carry user content; log ids only
		log.Printf("[MessageRepository] Database error during message creation for chat ID %s: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %s for chat: %s", message.ID, message.ChatID)
	return message, nil
}

// FindByChatID returns every message of a chat in creation order.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID string) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.New("invalid chat ID")
	}

	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat ID %s: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) FindByChatIDWithPagination(ctx context.Context, chatID string, limit, offset int) ([]domain.Message, int64, error) {
	if chatID == "" {
		return nil, 0, errors.New("invalid chat ID")
	}
	if limit <= 0 || limit > maxPageSize {
		return nil, 0, fmt.Errorf("invalid limit: must be between 1 and %d", maxPageSize)
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be non-negative")
	}

	total, err := r.CountByChatID(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	messages := []domain.Message{}
	err = r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding paginated messages for chat ID %s: %v", chatID, err)
		return nil, 0, errors.New("database error fetching paginated messages")
	}
	return messages, total, nil
}

// FindByUserID returns the newest messages across all of a user's chats.
func (r *gormMessageRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]domain.Message, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Select("messages.*").
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ?", userID).
		Order("messages.created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for user %s: %v", userID, err)
		return nil, errors.New("database error fetching user messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID string) (int64, error) {
	if chatID == "" {
		return 0, errors.New("invalid chat ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat ID %s: %v", chatID, err)
		return 0, errors.New("database error counting messages")
	}
	return count, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == "" {
		return errors.New("chat ID is required")
	}
	if message.Role != domain.RoleUser && message.Role != domain.RoleAssistant {
		return fmt.Errorf("invalid role %q", message.Role)
	}
	return message.PartList().Validate()
}
