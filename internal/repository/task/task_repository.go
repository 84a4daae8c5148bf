// File: internal/repository/task/task_repository.go
package task

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
)

var ErrTaskNotFound = errors.New("task not found")

type gormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.PlanID == 0 {
		return nil, errors.New("invalid plan ID")
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		log.Printf("[TaskRepository] Database error creating task for plan ID %d: %v", task.PlanID, err)
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (r *gormTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"photo_path":  task.PhotoPath,
			"status":      task.Status,
			"task_date":   task.TaskDate,
		})
	if result.Error != nil {
		log.Printf("[TaskRepository] Database error updating task ID %d: %v", task.ID, result.Error)
		return fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) UpdateStatus(ctx context.Context, taskID uint, status domain.TaskStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", taskID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update task status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *gormTaskRepository) FindByIDAndUserID(ctx context.Context, taskID, userID uint) (*domain.Task, error) {
	if taskID == 0 || userID == 0 {
		return nil, ErrTaskNotFound
	}
	var task domain.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN plans ON plans.id = tasks.plan_id").
		Where("tasks.id = ? AND plans.user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		log.Printf("[TaskRepository] Database error finding task ID %d: %v", taskID, err)
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// FindByPhotoPathAndUserID finds the task a stored photo belongs to, scoped
// to the plan owner.
func (r *gormTaskRepository) FindByPhotoPathAndUserID(ctx context.Context, photoPath string, userID uint) (*domain.Task, error) {
	if photoPath == "" || userID == 0 {
		return nil, ErrTaskNotFound
	}
	var task domain.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN plans ON plans.id = tasks.plan_id").
		Where("tasks.photo_path = ? AND plans.user_id = ?", photoPath, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		log.Printf("[TaskRepository] Database error finding photo owner: %v", err)
		return nil, fmt.Errorf("find task by photo: %w", err)
	}
	return &task, nil
}

func (r *gormTaskRepository) Delete(ctx context.Context, taskID uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, taskID)
	if result.Error != nil {
		log.Printf("[TaskRepository] Database error deleting task ID %d: %v", taskID, result.Error)
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
