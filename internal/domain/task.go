// File: internal/domain/task.go
package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// Toggled returns the opposite status.
func (s TaskStatus) Toggled() TaskStatus {
	if s == TaskStatusPending {
		return TaskStatusCompleted
	}
	return TaskStatusPending
}

// Task is a single dated unit of work belonging to one plan.
type Task struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	PlanID      uint       `json:"plan_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description string     `json:"description"`
	PhotoPath   string     `json:"photo_path,omitempty"`
	Status      TaskStatus `json:"status" gorm:"size:20;not null;default:'pending'"`
	TaskDate    time.Time  `json:"task_date" gorm:"not null;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOverdue is true for unfinished tasks dated before today.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == TaskStatusCompleted {
		return false
	}
	return NormalizeDate(t.TaskDate).Before(NormalizeDate(now))
}

// DateKey is the calendar bucket key for the task.
func (t *Task) DateKey() string {
	return t.TaskDate.Format(DateLayout)
}
