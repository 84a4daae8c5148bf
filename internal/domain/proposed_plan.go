// File: internal/domain/proposed_plan.go
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProposedPlan is a plan payload produced by the assistant and staged until
// the user accepts it. Only IsAccepted and PlanID change after creation.
type ProposedPlan struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	ChatID      uint           `json:"chat_id" gorm:"not null;index"`
	Chat        *Chat          `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description"`
	Color       string         `json:"color" gorm:"size:7"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Tasks       datatypes.JSON `json:"tasks"`
	IsAccepted  bool           `json:"is_accepted" gorm:"not null;default:false;index"`
	PlanID      *uint          `json:"plan_id"`
	CreatedAt   time.Time      `json:"created_at"`
}
