// File: internal/repository/proposal/proposal_repository.go
package proposal

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/domain"
)

var (
	ErrProposalNotFound = errors.New("proposed plan not found")
	ErrAlreadyAccepted  = errors.New("proposed plan already accepted")
)

type gormProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &gormProposalRepository{db: db}
}

func (r *gormProposalRepository) Create(ctx context.Context, proposal *domain.ProposedPlan) (*domain.ProposedPlan, error) {
	if proposal.ChatID == 0 || proposal.UserID == 0 {
		return nil, errors.New("invalid chat ID or user ID")
	}
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		log.Printf("[ProposalRepository] Database error creating proposal for chat ID %d: %v", proposal.ChatID, err)
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	log.Printf("[ProposalRepository] Proposal %d stored for chat %d", proposal.ID, proposal.ChatID)
	return proposal, nil
}

func (r *gormProposalRepository) FindByIDAndUserID(ctx context.Context, proposalID, userID uint) (*domain.ProposedPlan, error) {
	var p domain.ProposedPlan
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", proposalID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return &p, nil
}

func (r *gormProposalRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.ProposedPlan, error) {
	var proposals []domain.ProposedPlan
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

func (r *gormProposalRepository) Accept(ctx context.Context, proposalID, userID uint, plan *domain.Plan, tasks []domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional flip doubles as the guard against a second acceptance.
		result := tx.Model(&domain.ProposedPlan{}).
			Where("id = ? AND user_id = ? AND is_accepted = ?", proposalID, userID, false).
			Update("is_accepted", true)
		if result.Error != nil {
			return fmt.Errorf("flag proposal: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.ProposedPlan{}).
				Where("id = ? AND user_id = ?", proposalID, userID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check proposal: %w", err)
			}
			if count > 0 {
				return ErrAlreadyAccepted
			}
			return ErrProposalNotFound
		}

		plan.UserID = userID
		if err := tx.Omit("Tasks").Create(plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}

		if len(tasks) > 0 {
			for i := range tasks {
				tasks[i].PlanID = plan.ID
			}
			if err := tx.Create(&tasks).Error; err != nil {
				return fmt.Errorf("create tasks: %w", err)
			}
		}

		if err := tx.Model(&domain.ProposedPlan{}).
			Where("id = ?", proposalID).
			Update("plan_id", plan.ID).Error; err != nil {
			return fmt.Errorf("link plan: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrProposalNotFound) && !errors.Is(err, ErrAlreadyAccepted) {
			log.Printf("[ProposalRepository] Accept rolled back for proposal %d: %v", proposalID, err)
		}
		return err
	}
	log.Printf("[ProposalRepository] Proposal %d accepted as plan %d with %d tasks", proposalID, plan.ID, len(tasks))
	return nil
}
