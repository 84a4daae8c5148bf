package user

import (
	"context"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	RecordFailedAttempt(ctx context.Context, id uint, lockUntil *time.Time) error
	ResetFailedAttempts(ctx context.Context, id uint) error
}
