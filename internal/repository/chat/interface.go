package chat

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
)

// ChatRepository handles chat (conversation) data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByIDAndUserID(ctx context.Context, chatID, userID uint) (*domain.Chat, error)
	FindLatestByUserID(ctx context.Context, userID uint) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Chat, error)
	TouchUpdatedAt(ctx context.Context, chatID uint) error
	UpdateTitle(ctx context.Context, chatID uint, title string) error
	Delete(ctx context.Context, chatID, userID uint) error
}
