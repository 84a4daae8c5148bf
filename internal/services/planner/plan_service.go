// File: internal/services/planner/plan_service.go
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/plan"
)

// PlanService manages a user's plans. Every operation is scoped to the owner;
// plans belonging to someone else are reported as not found.
type PlanService struct {
	config   *Config
	planRepo plan.PlanRepository
	photos   PhotoStore
	logger   Logger
	now      Clock
}

func NewPlanService(config *Config, planRepo plan.PlanRepository, photos PhotoStore, logger Logger) *PlanService {
	if config == nil {
		config = DefaultConfig()
	}
	return &PlanService{
		config:   config,
		planRepo: planRepo,
		photos:   photos,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for calendar defaults.
func (s *PlanService) WithClock(now Clock) *PlanService {
	s.now = now
	return s
}

func (s *PlanService) List(ctx context.Context, userID uint) ([]PlanSummary, error) {
	plans, err := s.planRepo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list plans", "user_id", userID, "error", err)
		return nil, NewInternalError("list_plans", "could not load plans", err)
	}
	summaries := make([]PlanSummary, 0, len(plans))
	for i := range plans {
		summaries = append(summaries, PlanSummary{
			Plan:       plans[i],
			Stats:      plans[i].Stats(),
			IsComplete: plans[i].IsComplete(),
		})
	}
	return summaries, nil
}

func (s *PlanService) Get(ctx context.Context, userID, planID uint) (*domain.Plan, error) {
	p, err := s.planRepo.FindByIDAndUserID(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, NewNotFoundError("get_plan", userID, err)
		}
		return nil, NewInternalError("get_plan", "could not load plan", err)
	}
	return p, nil
}

func (s *PlanService) Create(ctx context.Context, userID uint, in PlanInput) (*domain.Plan, error) {
	f, err := in.validate(s.config)
	if err != nil {
		return nil, err
	}
	created, err := s.planRepo.Create(ctx, &domain.Plan{
		UserID:      userID,
		Title:       f.title,
		Description: f.description,
		Color:       f.color,
		StartDate:   f.start,
		EndDate:     f.end,
	})
	if err != nil {
		s.logger.Error("failed to create plan", "user_id", userID, "error", err)
		return nil, NewInternalError("create_plan", "could not save plan", err)
	}
	s.logger.Info("plan created", "user_id", userID, "plan_id", created.ID)
	return created, nil
}

func (s *PlanService) Update(ctx context.Context, userID, planID uint, in PlanInput) (*domain.Plan, error) {
	existing, err := s.Get(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	f, err := in.validate(s.config)
	if err != nil {
		return nil, err
	}

	existing.Title = f.title
	existing.Description = f.description
	existing.Color = f.color
	existing.StartDate = f.start
	existing.EndDate = f.end

	if err := s.planRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, NewNotFoundError("update_plan", userID, err)
		}
		return nil, NewInternalError("update_plan", "could not save plan", err)
	}
	s.logger.Info("plan updated", "user_id", userID, "plan_id", planID)
	return existing, nil
}

// Delete removes the plan with its tasks and then their photo files. A photo
// that cannot be removed is logged and left behind.
func (s *PlanService) Delete(ctx context.Context, userID, planID uint) error {
	photos, err := s.planRepo.Delete(ctx, planID, userID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return NewNotFoundError("delete_plan", userID, err)
		}
		return NewInternalError("delete_plan", "could not delete plan", err)
	}
	for _, path := range photos {
		if err := s.photos.Delete(path); err != nil {
			s.logger.Warn("failed to remove task photo", "plan_id", planID, "path", path, "error", err)
		}
	}
	s.logger.Info("plan deleted", "user_id", userID, "plan_id", planID, "photos_removed", len(photos))
	return nil
}

// Calendar validates the month parameters before touching the plan, then
// builds the month view from the plan's tasks.
func (s *PlanService) Calendar(ctx context.Context, userID, planID uint, yearParam, monthParam string) (*CalendarView, error) {
	params, err := ParseMonthParams(yearParam, monthParam)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	return buildCalendar(p, p.Tasks, params, s.now()), nil
}
