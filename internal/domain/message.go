// File: internal/domain/message.go
package domain

import (
    "time"

    "gorm.io/datatypes"
)

type Role string

const (
    RoleUser      Role = "user"
    RoleAssistant Role = "assistant"
)

// ParseRole maps anything other than "assistant" to the user role.
func ParseRole(s string) Role {
    if s == string(RoleAssistant) {
        return RoleAssistant
    }
    return RoleUser
}

// Message represents a single message within a chat. Messages are append-only.
type Message struct {
    ID        string                    `json:"id" gorm:"primaryKey;size:36"`
    ChatID    string                    `json:"chatId" gorm:"index;not null;size:36"`
    Role      Role                      `json:"role" gorm:"not null"`
    Parts     datatypes.JSONType[Parts] `json:"parts" gorm:"not null"`
    CreatedAt time.Time                 `json:"createdAt" gorm:"index"`
}

// NewMessage builds an unsaved message carrying the given parts.
func NewMessage(chatID string, role Role, parts Parts) *Message {
    return &Message{
        ChatID: chatID,
        Role:   role,
        Parts:  datatypes.NewJSONType(parts),
    }
}

// PartList returns the decoded parts of the message.
func (m *Message) PartList() Parts {
    return m.Parts.Data()
}
