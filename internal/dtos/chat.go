// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-planner/internal/domain"
)

// SendMessageRequestDTO is the chat send payload. A zero ConversationID
// targets the user's active conversation.
type SendMessageRequestDTO struct {
	Message        string `json:"message"`
	ConversationID uint   `json:"conversation_id"`
}

// MessageDTO is one transcript entry.
type MessageDTO struct {
	ID        uint   `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func FromMessage(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// SendMessageResponseDTO reports one completed exchange. Proposal is the
// extracted plan payload or null.
type SendMessageResponseDTO struct {
	Success          bool        `json:"success"`
	ConversationID   uint        `json:"conversation_id"`
	UserMessage      MessageDTO  `json:"user_message"`
	AssistantMessage MessageDTO  `json:"assistant_message"`
	AssistantHTML    string      `json:"assistant_html"`
	ProposedPlanID   *uint       `json:"proposed_plan_id"`
	Proposal         interface{} `json:"proposal"`
}

type AcceptProposalResponseDTO struct {
	Success     bool   `json:"success"`
	PlanID      uint   `json:"plan_id"`
	RedirectURL string `json:"redirect_url"`
}

type NewConversationResponseDTO struct {
	Success        bool `json:"success"`
	ConversationID uint `json:"conversation_id"`
}
