// File: internal/domain/plan.go
package domain

import (
	"regexp"
	"time"
)

// DefaultPlanColor is used whenever a plan arrives without a usable color.
const DefaultPlanColor = "#3B82F6"

// DateLayout is the wire and calendar-key format for all plan and task dates.
const DateLayout = "2006-01-02"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether s is a #RRGGBB hex color.
func ValidColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// Plan is a user-owned, named collection of dated tasks.
type Plan struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	User        *User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description"`
	Color       string     `json:"color" gorm:"size:7;not null;default:'#3B82F6'"`
	StartDate   time.Time  `json:"start_date" gorm:"not null"`
	EndDate     *time.Time `json:"end_date"`
	Tasks       []Task     `json:"tasks,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskStats summarises task progress for a plan.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Stats counts the plan's loaded tasks.
func (p *Plan) Stats() TaskStats {
	stats := TaskStats{Total: len(p.Tasks)}
	for _, t := range p.Tasks {
		if t.Status == TaskStatusCompleted {
			stats.Completed++
		}
	}
	return stats
}

// IsComplete is true only for plans with at least one task, all completed.
// A plan without tasks is never complete.
func (p *Plan) IsComplete() bool {
	stats := p.Stats()
	return stats.Total > 0 && stats.Completed == stats.Total
}

// NormalizeDate strips the clock from t and pins it to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
