// File: internal/domain/project.go
package domain

import "time"

// Project is a named grouping of chats owned by one user.
type Project struct {
    ID        string    `json:"id" gorm:"primaryKey;size:36"`
    UserID    string    `json:"-" gorm:"index;not null"`
    Title     string    `json:"title" gorm:"not null"`
    Chats     []Chat    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
    CreatedAt time.Time `json:"createdAt"`
}
