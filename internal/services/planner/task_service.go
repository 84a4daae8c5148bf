// File: internal/services/planner/task_service.go
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/plan"
	"github.com/iyunix/go-planner/internal/repository/task"
)

// TaskService manages tasks; ownership is checked through the parent plan.
type TaskService struct {
	config   *Config
	planRepo plan.PlanRepository
	taskRepo task.TaskRepository
	photos   PhotoStore
	logger   Logger
	now      Clock
}

func NewTaskService(config *Config, planRepo plan.PlanRepository, taskRepo task.TaskRepository, photos PhotoStore, logger Logger) *TaskService {
	if config == nil {
		config = DefaultConfig()
	}
	return &TaskService{
		config:   config,
		planRepo: planRepo,
		taskRepo: taskRepo,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for overdue checks.
func (s *TaskService) WithClock(now Clock) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*domain.Task, error) {
	t, err := s.taskRepo.FindByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, NewNotFoundError("get_task", userID, err)
		}
		return nil, NewInternalError("get_task", "could not load task", err)
	}
	return t, nil
}

// PhotoOwned reports a not-found error unless photoPath belongs to one of the
// user's tasks.
func (s *TaskService) PhotoOwned(ctx context.Context, userID uint, photoPath string) error {
	if _, err := s.taskRepo.FindByPhotoPathAndUserID(ctx, photoPath, userID); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return NewNotFoundError("get_photo", userID, err)
		}
		return NewInternalError("get_photo", "could not load photo owner", err)
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, userID, planID uint, in TaskInput) (*domain.Task, error) {
	if _, err := s.ownedPlan(ctx, "create_task", userID, planID); err != nil {
		return nil, err
	}
	f, err := in.validate(s.config)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		PlanID:      planID,
		Title:       f.title,
		Description: f.description,
		Status:      f.status,
		TaskDate:    f.date,
	}
	if in.Photo != nil {
		path, err := s.photos.Save(in.Photo.Filename, in.Photo.Content)
		if err != nil {
			return nil, NewInternalError("create_task", "could not store photo", err)
		}
		t.PhotoPath = path
	}

	created, err := s.taskRepo.Create(ctx, t)
	if err != nil {
		s.discardPhoto(t.PhotoPath)
		return nil, NewInternalError("create_task", "could not save task", err)
	}
	s.logger.Info("task created", "user_id", userID, "plan_id", planID, "task_id", created.ID)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uint, in TaskInput) (*domain.Task, error) {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	f, err := in.validate(s.config)
	if err != nil {
		return nil, err
	}

	oldPhoto := existing.PhotoPath
	existing.Title = f.title
	existing.Description = f.description
	existing.Status = f.status
	existing.TaskDate = f.date
	if in.RemovePhoto {
		existing.PhotoPath = ""
	}
	if in.Photo != nil {
		path, err := s.photos.Save(in.Photo.Filename, in.Photo.Content)
		if err != nil {
			return nil, NewInternalError("update_task", "could not store photo", err)
		}
		existing.PhotoPath = path
	}

	if err := s.taskRepo.Update(ctx, existing); err != nil {
		if existing.PhotoPath != oldPhoto {
			s.discardPhoto(existing.PhotoPath)
		}
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, NewNotFoundError("update_task", userID, err)
		}
		return nil, NewInternalError("update_task", "could not save task", err)
	}
	if oldPhoto != "" && existing.PhotoPath != oldPhoto {
		s.discardPhoto(oldPhoto)
	}
	s.logger.Info("task updated", "user_id", userID, "task_id", taskID)
	return existing, nil
}

// Delete removes the task and returns the plan it belonged to.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) (uint, error) {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return 0, err
	}
	if err := s.taskRepo.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return 0, NewNotFoundError("delete_task", userID, err)
		}
		return 0, NewInternalError("delete_task", "could not delete task", err)
	}
	s.discardPhoto(existing.PhotoPath)
	s.logger.Info("task deleted", "user_id", userID, "task_id", taskID)
	return existing.PlanID, nil
}

// ToggleStatus flips pending and completed and reports the new overdue state.
func (s *TaskService) ToggleStatus(ctx context.Context, userID, taskID uint) (*ToggleResult, error) {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	existing.Status = existing.Status.Toggled()
	if err := s.taskRepo.UpdateStatus(ctx, existing.ID, existing.Status); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, NewNotFoundError("toggle_task", userID, err)
		}
		return nil, NewInternalError("toggle_task", "could not update task", err)
	}
	return &ToggleResult{Status: existing.Status, IsOverdue: existing.IsOverdue(s.now())}, nil
}

// Plan returns the owned plan a new task would be added to.
func (s *TaskService) Plan(ctx context.Context, userID, planID uint) (*domain.Plan, error) {
	return s.ownedPlan(ctx, "get_plan", userID, planID)
}

func (s *TaskService) ownedPlan(ctx context.Context, operation string, userID, planID uint) (*domain.Plan, error) {
	p, err := s.planRepo.FindByIDAndUserID(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, NewNotFoundError(operation, userID, err)
		}
		return nil, NewInternalError(operation, "could not load plan", err)
	}
	return p, nil
}

func (s *TaskService) discardPhoto(path string) {
	if path == "" {
		return
	}
	if err := s.photos.Delete(path); err != nil {
		s.logger.Warn("failed to remove task photo", "path", path, "error", err)
	}
}
