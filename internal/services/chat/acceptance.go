// File: internal/services/chat/acceptance.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/repository/proposal"
)

// AcceptanceService turns a staged proposal into a stored plan with tasks.
type AcceptanceService struct {
	config       *Config
	proposalRepo proposal.ProposalRepository
	logger       Logger
}

func NewAcceptanceService(config *Config, proposalRepo proposal.ProposalRepository, logger Logger) *AcceptanceService {
	if config == nil {
		config = DefaultConfig()
	}
	return &AcceptanceService{config: config, proposalRepo: proposalRepo, logger: logger}
}

// Accept materializes the proposal for its owner. The plan and all of its
// tasks are written together with the acceptance flag, or nothing is written.
func (s *AcceptanceService) Accept(ctx context.Context, userID, proposalID uint) (*domain.Plan, error) {
	staged, err := s.proposalRepo.FindByIDAndUserID(ctx, proposalID, userID)
	if err != nil {
		if errors.Is(err, proposal.ErrProposalNotFound) {
			return nil, NewNotFoundError("accept_proposal", userID, 0, err)
		}
		return nil, NewInternalError("accept_proposal", "could not load proposal", err)
	}
	if staged.IsAccepted {
		return nil, alreadyAccepted(userID, staged.ChatID)
	}

	plan, tasks, err := s.buildPlan(staged)
	if err != nil {
		return nil, err
	}

	if err := s.proposalRepo.Accept(ctx, staged.ID, userID, plan, tasks); err != nil {
		switch {
		case errors.Is(err, proposal.ErrAlreadyAccepted):
			return nil, alreadyAccepted(userID, staged.ChatID)
		case errors.Is(err, proposal.ErrProposalNotFound):
			return nil, NewNotFoundError("accept_proposal", userID, staged.ChatID, err)
		}
		s.logger.Error("proposal acceptance failed", "proposal_id", staged.ID, "user_id", userID, "error", err)
		return nil, NewInternalError("accept_proposal", "could not create plan", err)
	}

	plan.Tasks = tasks
	s.logger.Info("proposal accepted", "proposal_id", staged.ID, "plan_id", plan.ID, "tasks", len(tasks))
	return plan, nil
}

func (s *AcceptanceService) buildPlan(staged *domain.ProposedPlan) (*domain.Plan, []domain.Task, error) {
	start, err := domain.ParseDate(strings.TrimSpace(staged.StartDate))
	if err != nil {
		return nil, nil, NewValidationError("accept_proposal", fmt.Sprintf("invalid start date %q", staged.StartDate))
	}

	var end *time.Time
	if raw := strings.TrimSpace(staged.EndDate); raw != "" {
		parsed, err := domain.ParseDate(raw)
		if err != nil {
			return nil, nil, NewValidationError("accept_proposal", fmt.Sprintf("invalid end date %q", staged.EndDate))
		}
		if parsed.Before(start) {
			return nil, nil, NewValidationError("accept_proposal", "end date is before start date")
		}
		end = &parsed
	}

	color := staged.Color
	if !domain.ValidColor(color) {
		color = domain.DefaultPlanColor
	}

	title := strings.TrimSpace(staged.Title)
	if title == "" {
		title = s.config.DefaultPlanTitle
	}

	var rawEntries []json.RawMessage
	if len(bytes.TrimSpace(staged.Tasks)) > 0 {
		var ok bool
		if rawEntries, ok = taskEntries(json.RawMessage(staged.Tasks)); !ok {
			return nil, nil, NewValidationError("accept_proposal", "task list is malformed")
		}
	}

	tasks := make([]domain.Task, 0, len(rawEntries))
	for i, raw := range rawEntries {
		entry, ok := looseTask(raw)
		if !ok {
			return nil, nil, NewValidationError("accept_proposal", fmt.Sprintf("task %d is malformed", i+1))
		}
		taskDate := start
		if raw := strings.TrimSpace(entry.TaskDate); raw != "" {
			parsed, err := domain.ParseDate(raw)
			if err != nil {
				return nil, nil, NewValidationError("accept_proposal",
					fmt.Sprintf("task %d has invalid date %q", i+1, entry.TaskDate))
			}
			taskDate = parsed
		}

		status := domain.TaskStatus(entry.Status)
		if !status.Valid() {
			status = domain.TaskStatusPending
		}

		taskTitle := strings.TrimSpace(entry.Title)
		if taskTitle == "" {
			taskTitle = s.config.DefaultTaskTitle
		}

		tasks = append(tasks, domain.Task{
			Title:       TruncateText(taskTitle, 200),
			Description: entry.Description,
			Status:      status,
			TaskDate:    taskDate,
		})
	}

	plan := &domain.Plan{
		UserID:      staged.UserID,
		Title:       TruncateText(title, 200),
		Description: staged.Description,
		Color:       color,
		StartDate:   start,
		EndDate:     end,
	}
	return plan, tasks, nil
}

func alreadyAccepted(userID, chatID uint) *ChatError {
	return &ChatError{
		Type:      ErrTypeConflict,
		Operation: "accept_proposal",
		Message:   "plan proposal already accepted",
		UserID:    userID,
		ChatID:    chatID,
		Cause:     ErrAlreadyAccepted,
	}
}
