// File: internal/services/planner/inputs.go
package planner

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/go-planner/internal/domain"
)

// PlanInput is the submitted plan form.
type PlanInput struct {
	Title       string
	Description string
	Color       string
	StartDate   string
	EndDate     string
}

// TaskInput is the submitted task form. Photo is nil when no file was chosen.
type TaskInput struct {
	Title       string
	Description string
	TaskDate    string
	Status      string
	Photo       *PhotoUpload
	RemovePhoto bool
}

// PhotoUpload is an uploaded image. Content must be rewindable so the type
// can be sniffed before the file is stored.
type PhotoUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

type planFields struct {
	title       string
	description string
	color       string
	start       time.Time
	end         *time.Time
}

type taskFields struct {
	title       string
	description string
	date        time.Time
	status      domain.TaskStatus
}

func (in PlanInput) validate(cfg *Config) (planFields, error) {
	verr := NewValidationError()
	f := planFields{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		color:       strings.TrimSpace(in.Color),
	}

	checkTitle(verr, f.title, cfg.TitleMaxRunes)

	if f.color == "" {
		f.color = domain.DefaultPlanColor
	} else if !domain.ValidColor(f.color) {
		verr.Add("color", "Color must be a hex code like #3B82F6.")
	}

	start, ok := parseRequiredDate(verr, "start_date", in.StartDate)
	if ok {
		f.start = start
	}

	if raw := strings.TrimSpace(in.EndDate); raw != "" {
		end, err := domain.ParseDate(raw)
		switch {
		case err != nil:
			verr.Add("end_date", "Enter a valid date.")
		case ok && end.Before(start):
			verr.Add("end_date", "End date cannot be before the start date.")
		default:
			f.end = &end
		}
	}

	if verr.HasErrors() {
		return planFields{}, verr
	}
	return f, nil
}

func (in TaskInput) validate(cfg *Config) (taskFields, error) {
	verr := NewValidationError()
	f := taskFields{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		status:      domain.TaskStatus(strings.TrimSpace(in.Status)),
	}

	checkTitle(verr, f.title, cfg.TitleMaxRunes)

	if f.status == "" {
		f.status = domain.TaskStatusPending
	} else if !f.status.Valid() {
		verr.Add("status", "Select a valid status.")
	}

	if date, ok := parseRequiredDate(verr, "task_date", in.TaskDate); ok {
		f.date = date
	}

	if in.Photo != nil {
		if msg := in.Photo.check(cfg.MaxPhotoBytes); msg != "" {
			verr.Add("photo", msg)
		}
	}

	if verr.HasErrors() {
		return taskFields{}, verr
	}
	return f, nil
}

// check enforces the size limit and sniffs the first bytes for an image type.
func (p *PhotoUpload) check(maxBytes int64) string {
	if p.Size > maxBytes {
		return fmt.Sprintf("File size must not exceed %dMB.", maxBytes>>20)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(p.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "Could not read the uploaded file."
	}
	if _, err := p.Content.Seek(0, io.SeekStart); err != nil {
		return "Could not read the uploaded file."
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "Upload a valid image."
	}
	return ""
}

func checkTitle(verr *ValidationError, title string, maxRunes int) {
	switch {
	case title == "":
		verr.Add("title", "This field is required.")
	case utf8.RuneCountInString(title) > maxRunes:
		verr.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", maxRunes))
	}
}

func parseRequiredDate(verr *ValidationError, field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(field, "This field is required.")
		return time.Time{}, false
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		verr.Add(field, "Enter a valid date.")
		return time.Time{}, false
	}
	return date, true
}
