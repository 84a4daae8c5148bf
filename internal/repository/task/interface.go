package task

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
)

// TaskRepository handles task data operations. Ownership is checked through
// the parent plan's user.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	UpdateStatus(ctx context.Context, taskID uint, status domain.TaskStatus) error
	FindByIDAndUserID(ctx context.Context, taskID, userID uint) (*domain.Task, error)
	FindByPhotoPathAndUserID(ctx context.Context, photoPath string, userID uint) (*domain.Task, error)
	Delete(ctx context.Context, taskID uint) error
}
