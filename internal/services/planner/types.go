// File: internal/services/planner/types.go
package planner

import (
	"io"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
)

// Logger defines the logging interface used by the planner services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// PhotoStore keeps task photo files. Paths it returns are relative to the
// media root and are what tasks store.
type PhotoStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Delete(path string) error
}

// PlanSummary is a plan with its progress for list views.
type PlanSummary struct {
	Plan       domain.Plan
	Stats      domain.TaskStats
	IsComplete bool
}

// ToggleResult is the task state after a status toggle.
type ToggleResult struct {
	Status    domain.TaskStatus `json:"status"`
	IsOverdue bool              `json:"is_overdue"`
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time
