package plan

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
)

// PlanRepository handles plan data operations. Every lookup is scoped to the owner.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	FindByIDAndUserID(ctx context.Context, planID, userID uint) (*domain.Plan, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Plan, error)
	// Delete removes the plan and its tasks, returning the photo paths the
	// deleted tasks referenced.
	Delete(ctx context.Context, planID, userID uint) ([]string, error)
}
