// File: internal/domain/chat.go
package domain

import "time"

// DefaultChatTitle is assigned to chats until a title is derived from the conversation.
const DefaultChatTitle = "New chat"

// Chat represents a single conversation thread.
type Chat struct {
    ID          string    `json:"id" gorm:"primaryKey;size:36"`
    UserID      string    `json:"userId" gorm:"index;not null"`     // Subject of the auth token that owns the chat
    Title       string    `json:"title"`                              // Last title derived from an assistant turn
    ProjectID   *string   `json:"projectId,omitempty" gorm:"index;size:36"`
    IsOnProject bool      `json:"isOnProject" gorm:"not null;default:false"`
    Messages    []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// ChatSummary is the lightweight shape returned by chat listings.
type ChatSummary struct {
    ID        string    `json:"id"`
    Title     string    `json:"title"`
    CreatedAt time.Time `json:"createdAt"`
}

// SearchResult is a single chat history hit.
type SearchResult struct {
    ID    string `json:"id"`
    Title string `json:"title"`
    URL   string `json:"url"`
}
