// File: internal/domain/message.go
package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn within a chat.
type Message struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index"`
	Chat      *Chat     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Role      string    `json:"role" gorm:"size:10;not null"` // "user" or "assistant"
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
