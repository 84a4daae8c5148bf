// File: internal/dtos/plan.go
package dtos

import (
	"time"

	"github.com/iyunix/go-planner/internal/domain"
)

// PlanResponseDTO is a plan as exposed by the JSON API.
type PlanResponseDTO struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Color       string           `json:"color"`
	StartDate   string           `json:"start_date"`
	EndDate     *string          `json:"end_date"`
	IsComplete  bool             `json:"is_complete"`
	Stats       domain.TaskStats `json:"stats"`
	CreatedAt   string           `json:"created_at"`
}

// FromPlan maps a plan and its task progress to the API shape.
func FromPlan(plan domain.Plan, stats domain.TaskStats, complete bool) PlanResponseDTO {
	dto := PlanResponseDTO{
		ID:          plan.ID,
		Title:       plan.Title,
		Description: plan.Description,
		Color:       plan.Color,
		StartDate:   plan.StartDate.Format(domain.DateLayout),
		IsComplete:  complete,
		Stats:       stats,
		CreatedAt:   plan.CreatedAt.Format(time.RFC3339),
	}
	if plan.EndDate != nil {
		formatted := plan.EndDate.Format(domain.DateLayout)
		dto.EndDate = &formatted
	}
	return dto
}

// TaskToggleResponseDTO is returned after flipping a task's status.
type TaskToggleResponseDTO struct {
	Status    string `json:"status"`
	IsOverdue bool   `json:"is_overdue"`
}
