// File: internal/services/chat/types.go
package chat

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/services/ai"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Replier produces the assistant's next turn for a transcript. Implementations
// must not fail; errors are expressed as reply text.
type Replier interface {
	Reply(ctx context.Context, turns []ai.Turn) string
}

// SendResult is everything the chat page needs after one exchange.
type SendResult struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	ProposedPlanID   *uint
	Proposal         *ProposalPayload
}

// ConversationView is a conversation with its transcript and staged proposals.
type ConversationView struct {
	Chat      *domain.Chat
	Messages  []domain.Message
	Proposals []domain.ProposedPlan
}
