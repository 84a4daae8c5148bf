// File: internal/repository/plan/plan_repository.go
package plan

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

type gormPlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &gormPlanRepository{db: db}
}

func (r *gormPlanRepository) Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if plan.UserID == 0 {
		return nil, errors.New("invalid user ID")
	}
	if err := r.db.WithContext(ctx).Omit("Tasks").Create(plan).Error; err != nil {
		log.Printf("[PlanRepository] Database error creating plan for user ID %d: %v", plan.UserID, err)
		return nil, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

func (r *gormPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("id = ? AND user_id = ?", plan.ID, plan.UserID).
		Updates(map[string]interface{}{
			"title":       plan.Title,
			"description": plan.Description,
			"color":       plan.Color,
			"start_date":  plan.StartDate,
			"end_date":    plan.EndDate,
		})
	if result.Error != nil {
		log.Printf("[PlanRepository] Database error updating plan ID %d: %v", plan.ID, result.Error)
		return fmt.Errorf("update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// FindByIDAndUserID loads a plan with its tasks in calendar order.
func (r *gormPlanRepository) FindByIDAndUserID(ctx context.Context, planID, userID uint) (*domain.Plan, error) {
	if planID == 0 || userID == 0 {
		return nil, ErrPlanNotFound
	}
	var plan domain.Plan
	err := r.db.WithContext(ctx).
		Preload("Tasks", orderTasks).
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		log.Printf("[PlanRepository] Database error finding plan ID %d: %v", planID, err)
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &plan, nil
}

// FindByUserID lists the user's plans, newest first, with tasks preloaded for stats.
func (r *gormPlanRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := r.db.WithContext(ctx).
		Preload("Tasks", orderTasks).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&plans).Error
	if err != nil {
		log.Printf("[PlanRepository] Database error listing plans for user ID %d: %v", userID, err)
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (r *gormPlanRepository) Delete(ctx context.Context, planID, userID uint) ([]string, error) {
	var photos []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan domain.Plan
		if err := tx.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}
		if err := tx.Model(&domain.Task{}).
			Where("plan_id = ? AND photo_path <> ''", plan.ID).
			Pluck("photo_path", &photos).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&plan).Error
	})
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, err
		}
		log.Printf("[PlanRepository] Database error deleting plan ID %d for user ID %d: %v", planID, userID, err)
		return nil, fmt.Errorf("delete plan: %w", err)
	}
	log.Printf("[PlanRepository] Plan deleted: ID %d for user %d", planID, userID)
	return photos, nil
}

func orderTasks(db *gorm.DB) *gorm.DB {
	return db.Order("task_date ASC, created_at DESC, id DESC")
}
