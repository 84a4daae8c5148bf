package message

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	// FindByChatID returns the transcript in creation order.
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
}
