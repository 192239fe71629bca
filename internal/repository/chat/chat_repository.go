package chat

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/iyunix/go-visionai/internal/domain"
)

var ErrChatNotFound = errors.New("chat not found")
var ErrUnauthorizedAccess = errors.New("unauthorized access to chat")

const (
    // MaxSearchResults caps the number of chats returned by Search.
    MaxSearchResults = 20
    maxTitleLength   = 200
    // MaxSearchLength bounds the search term in bytes.
    MaxSearchLength  = 100
    untitledChat     = "Untitled chat"
)

type gormChatRepository struct {
    db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
    return &gormChatRepository{db: db}
}

// ===== CRUD =====

// Create assigns an id and the default title when missing.
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
    if chat != nil {
        if chat.ID == "" {
            chat.ID = uuid.NewString()
        }
        if chat.Title == "" {
            chat.Title = domain.DefaultChatTitle
        }
    }
    if err := r.validateChatInput(chat); err != nil {
        log.Printf("[ChatRepository] Validation failed: %v", err)
        return nil, fmt.Errorf("validation failed: %w", err)
    }

    if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
        log.Printf("[ChatRepository] Database error during chat creation for user %s: %v", chat.UserID, err)
        return nil, errors.New("database error creating chat")
    }

    log.Printf("[ChatRepository] Chat created successfully with ID: %s for user: %s", chat.ID, chat.UserID)
    return chat, nil
}

func (r *gormChatRepository) FindByIDAndUserID(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
    if chatID == "" || userID == "" {
        return nil, errors.New("invalid chat ID or user ID")
    }

    var chat domain.Chat
    err := r.db.WithContext(ctx).
        Where("id = ? AND user_id = ?", chatID, userID).
        First(&chat).Error
    return r.handleFindError(err, &chat, "FindByIDAndUserID")
}

// FindWithMessages loads the chat together with its messages in ascending creation order.
func (r *gormChatRepository) FindWithMessages(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
    if chatID == "" || userID == "" {
        return nil, errors.New("invalid chat ID or user ID")
    }

    var chat domain.Chat
    err := r.db.WithContext(ctx).
        Preload("Messages", func(db *gorm.DB) *gorm.DB {
            return db.Order("created_at ASC, id ASC")
        }).
        Where("id = ? AND user_id = ?", chatID, userID).
        First(&chat).Error
    return r.handleFindError(err, &chat, "FindWithMessages")
}

// FindUnassignedByUserID lists chats that are not filed under a project, newest first.
func (r *gormChatRepository) FindUnassignedByUserID(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
    if userID == "" {
        return nil, errors.New("invalid user ID")
    }

    chats := []domain.ChatSummary{}
    err := r.db.WithContext(ctx).
        Model(&domain.Chat{}).
        Select("id, title, created_at").
        Where("user_id = ? AND is_on_project = ?", userID, false).
        Order("created_at DESC, id DESC").
        Scan(&chats).Error
    if err != nil {
        log.Printf("[ChatRepository] Database error listing chats for user %s: %v", userID, err)
        return nil, errors.New("database error fetching chats")
    }
    return chats, nil
}

func (r *gormChatRepository) FindByProjectID(ctx context.Context, projectID, userID string) ([]domain.ChatSummary, error) {
    if projectID == "" || userID == "" {
        return nil, errors.New("invalid project ID or user ID")
    }

    chats := []domain.ChatSummary{}
    err := r.db.WithContext(ctx).
        Model(&domain.Chat{}).
        Select("id, title, created_at").
        Where("user_id = ? AND project_id = ?", userID, projectID).
        Order("created_at DESC, id DESC").
        Scan(&chats).Error
    if err != nil {
        log.Printf("[ChatRepository] Database error listing chats for project %s: %v", projectID, err)
        return nil, errors.New("database error fetching project chats")
    }
    return chats, nil
}

// ExistsByIDAndUserID - ownership validation without loading the row
func (r *gormChatRepository) ExistsByIDAndUserID(ctx context.Context, chatID, userID string) (bool, error) {
    if chatID == "" || userID == "" {
        return false, errors.New("invalid chat ID or user ID")
    }

    var count int64
    err := r.db.WithContext(ctx).Model(&domain.Chat{}).Where("id = ? AND user_id = ?", chatID, userID).Count(&count).Error
    if err != nil {
        log.Printf("[ChatRepository] Database error checking chat ownership for chat %s, user %s: %v", chatID, userID, err)
        return false, errors.New("database error checking chat ownership")
    }
    return count > 0, nil
}

// UpdateTitle overwrites the title unconditionally; concurrent writers race and the last one wins.
func (r *gormChatRepository) UpdateTitle(ctx context.Context, chatID, userID, title string) error {
    title = strings.TrimSpace(title)
    if chatID == "" || userID == "" {
        return errors.New("invalid chat ID or user ID")
    }
    if title == "" {
        return errors.New("title cannot be empty")
    }
    if err := r.validateChatTitle(title); err != nil {
        return fmt.Errorf("title validation: %w", err)
    }

    result := r.db.WithContext(ctx).
        Model(&domain.Chat{}).
        Where("id = ? AND user_id = ?", chatID, userID).
        Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
    if result.Error != nil {
        log.Printf("[ChatRepository] Database error updating title for chat %s: %v", chatID, result.Error)
        return errors.New("database error updating chat title")
    }
    if result.RowsAffected == 0 {
        return ErrChatNotFound
    }
    return nil
}

// AssignProject files the chat under projectID, or removes it from any project when projectID is nil.
func (r *gormChatRepository) AssignProject(ctx context.Context, chatID, userID string, projectID *string) (*domain.Chat, error) {
    if chatID == "" || userID == "" {
        return nil, errors.New("invalid chat ID or user ID")
    }

    result := r.db.WithContext(ctx).
        Model(&domain.Chat{}).
        Where("id = ? AND user_id = ?", chatID, userID).
        Updates(map[string]interface{}{
            "project_id":    projectID,
            "is_on_project": projectID != nil,
            "updated_at":    time.Now(),
        })
    if result.Error != nil {
        log.Printf("[ChatRepository] Database error assigning project for chat %s: %v", chatID, result.Error)
        return nil, errors.New("database error updating chat project")
    }
    if result.RowsAffected == 0 {
        return nil, ErrChatNotFound
    }
    return r.FindByIDAndUserID(ctx, chatID, userID)
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID string) error {
    if chatID == "" {
        return errors.New("invalid chat ID")
    }

    result := r.db.WithContext(ctx).
        Model(&domain.Chat{}).
        Where("id = ?", chatID).
        Update("updated_at", time.Now())
    if result.Error != nil {
        log.Printf("[ChatRepository] Database error updating timestamp for chat %s: %v", chatID, result.Error)
        return errors.New("database error updating chat timestamp")
    }
    if result.RowsAffected == 0 {
        return ErrChatNotFound
    }
    return nil
}

// Delete removes the chat and its messages in one transaction.
func (r *gormChatRepository) Delete(ctx context.Context, chatID, userID string) error {
    if chatID == "" || userID == "" {
        return errors.New("invalid chat ID or user ID")
    }

    err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        result := tx.Where("id = ? AND user_id = ?", chatID, userID).Delete(&domain.Chat{})
        if result.Error != nil {
            return result.Error
        }
        if result.RowsAffected == 0 {
            return ErrUnauthorizedAccess
        }
        return tx.Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error
    })
    if errors.Is(err, ErrUnauthorizedAccess) {
        return err
    }
    if err != nil {
        log.Printf("[ChatRepository] Database error deleting chat %s for user %s: %v", chatID, userID, err)
        return errors.New("database error deleting chat")
    }

    log.Printf("[ChatRepository] Chat deleted successfully: ID %s for user %s", chatID, userID)
    return nil
}

// ===== SEARCH =====

type searchRow struct {
    ID    string
    Title *string
}

// Search matches the term against chat titles and stored message parts,
// case-insensitively, ordered by most recent message.
func (r *gormChatRepository) Search(ctx context.Context, userID, term string, limit int) ([]domain.SearchResult, error) {
    if userID == "" {
        return nil, errors.New("invalid user ID")
    }
    term = strings.TrimSpace(term)
    if term == "" {
        return []domain.SearchResult{}, nil
    }
    if len(term) > MaxSearchLength {
        return nil, errors.New("search pattern too long")
    }
    if limit <= 0 || limit > MaxSearchResults {
        limit = MaxSearchResults
    }

    pattern := "%" + escapeLike(term) + "%"
    var rows []searchRow
    err := r.db.WithContext(ctx).Raw(`
        SELECT c.id, c.title, MAX(m.created_at) AS last_message_at
        FROM chats c
        LEFT JOIN messages m ON m.chat_id = c.id
        WHERE c.user_id = ?
          AND (
            LOWER(c.title) LIKE LOWER(?) ESCAPE '\'
            OR EXISTS (
              SELECT 1 FROM messages m2
              WHERE m2.chat_id = c.id AND LOWER(m2.parts) LIKE LOWER(?) ESCAPE '\'
            )
          )
        GROUP BY c.id, c.title
        ORDER BY last_message_at IS NULL, last_message_at DESC
        LIMIT ?`, userID, pattern, pattern, limit).
        Scan(&rows).Error
    if err != nil {
        log.Printf("[ChatRepository] Database error searching chats for user %s: %v", userID, err)
        return nil, errors.New("database error searching chats")
    }

    results := make([]domain.SearchResult, 0, len(rows))
    for _, row := range rows {
        title := untitledChat
        if row.Title != nil && strings.TrimSpace(*row.Title) != "" {
            title = *row.Title
        }
        results = append(results, domain.SearchResult{ID: row.ID, Title: title, URL: "/~/" + row.ID})
    }
    return results, nil
}

// escapeLike neutralizes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
    return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ===== VALIDATION HELPERS =====

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
    if chat == nil {
        return errors.New("chat cannot be nil")
    }
    if chat.UserID == "" {
        return errors.New("user ID is required")
    }
    if err := r.validateChatTitle(chat.Title); err != nil {
        return fmt.Errorf("title validation: %w", err)
    }
    return nil
}

func (r *gormChatRepository) validateChatTitle(title string) error {
    if len(title) > maxTitleLength {
        return fmt.Errorf("title must be %d characters or less", maxTitleLength)
    }
    // Basic XSS protection
    if strings.Contains(title, "<script") || strings.Contains(title, "javascript:") {
        return errors.New("invalid characters detected in title")
    }
    return nil
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
    if err == nil {
        return chat, nil
    }
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, ErrChatNotFound
    }
    log.Printf("[ChatRepository] %s database error: %v", operation, err)
    return nil, errors.New("database query failed")
}
