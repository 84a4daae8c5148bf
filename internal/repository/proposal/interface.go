package proposal

import (
	"context"

	"github.com/iyunix/go-planner/internal/domain"
)

// ProposalRepository handles staged assistant plan proposals.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *domain.ProposedPlan) (*domain.ProposedPlan, error)
	FindByIDAndUserID(ctx context.Context, proposalID, userID uint) (*domain.ProposedPlan, error)
	FindByChatID(ctx context.Context, chatID uint) ([]domain.ProposedPlan, error)
	// Accept materializes a proposal atomically: the acceptance flag, the
	// plan row and every task row are written together or not at all.
	Accept(ctx context.Context, proposalID, userID uint, plan *domain.Plan, tasks []domain.Task) error
}
