// File: internal/handlers/task_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/dtos"
	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/services/planner"
)

// multipartOverhead leaves room for the text fields around an upload.
const multipartOverhead = 1 << 20

type TaskHandler struct {
	tasks          *planner.TaskService
	pages          *Renderer
	maxUploadBytes int64
}

func NewTaskHandler(tasks *planner.TaskService, pages *Renderer, maxUploadBytes int64) *TaskHandler {
	return &TaskHandler{tasks: tasks, pages: pages, maxUploadBytes: maxUploadBytes}
}

// ShowCreateForm renders an empty task form dated ?date=, or today.
func (h *TaskHandler) ShowCreateForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlan(w, r)
	if !ok {
		return
	}
	in := planner.TaskInput{
		TaskDate: r.URL.Query().Get("date"),
		Status:   string(domain.TaskStatusPending),
	}
	if in.TaskDate == "" {
		in.TaskDate = time.Now().Format(domain.DateLayout)
	}
	h.renderForm(w, r, http.StatusOK, p, nil, in, nil)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlan(w, r)
	if !ok {
		return
	}
	in, fieldErrors, ok := h.parseTaskForm(w, r)
	if !ok {
		return
	}
	defer closePhoto(in)
	if fieldErrors != nil {
		h.renderForm(w, r, http.StatusBadRequest, p, nil, in, fieldErrors)
		return
	}
	if _, err := h.tasks.Create(r.Context(), p.UserID, p.ID, in); err != nil {
		h.formError(w, r, p, nil, in, err)
		return
	}
	http.Redirect(w, r, planURL(p.ID), http.StatusSeeOther)
}

func (h *TaskHandler) ShowEditForm(w http.ResponseWriter, r *http.Request) {
	t, p, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	in := planner.TaskInput{
		Title:       t.Title,
		Description: t.Description,
		TaskDate:    t.TaskDate.Format(domain.DateLayout),
		Status:      string(t.Status),
	}
	h.renderForm(w, r, http.StatusOK, p, t, in, nil)
}

func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	t, p, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	in, fieldErrors, ok := h.parseTaskForm(w, r)
	if !ok {
		return
	}
	defer closePhoto(in)
	if fieldErrors != nil {
		h.renderForm(w, r, http.StatusBadRequest, p, t, in, fieldErrors)
		return
	}
	if _, err := h.tasks.Update(r.Context(), p.UserID, t.ID, in); err != nil {
		h.formError(w, r, p, t, in, err)
		return
	}
	http.Redirect(w, r, planURL(p.ID), http.StatusSeeOther)
}

func (h *TaskHandler) ShowDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	t, p, ok := h.ownedTask(w, r)
	if !ok {
		return
	}
	h.pages.Page(w, r, http.StatusOK, "task_confirm_delete.html", map[string]interface{}{"Task": t, "Plan": p})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError("delete_task", userID, nil))
		return
	}
	planID, err := h.tasks.Delete(r.Context(), userID, taskID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}
	http.Redirect(w, r, planURL(planID), http.StatusSeeOther)
}

// ToggleStatus flips the task between pending and completed.
func (h *TaskHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}
	result, err := h.tasks.ToggleStatus(r.Context(), userID, taskID)
	if err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, dtos.TaskToggleResponseDTO{
		Status:    string(result.Status),
		IsOverdue: result.IsOverdue,
	})
}

// PhotoGuard serves a stored photo only to the owner of its task. It expects
// the /media/ prefix to be stripped already.
func (h *TaskHandler) PhotoGuard(files http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserIDFromContext(r.Context())
		rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if err := h.tasks.PhotoOwned(r.Context(), userID, rel); err != nil {
			h.pages.fail(w, r, err)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func (h *TaskHandler) ownedPlan(w http.ResponseWriter, r *http.Request) (*domain.Plan, bool) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	planID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError("task_plan", userID, nil))
		return nil, false
	}
	p, err := h.tasks.Plan(r.Context(), userID, planID)
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) (*domain.Task, *domain.Plan, bool) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError("get_task", userID, nil))
		return nil, nil, false
	}
	t, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, nil, false
	}
	p, err := h.tasks.Plan(r.Context(), userID, t.PlanID)
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, nil, false
	}
	return t, p, true
}

// parseTaskForm reads the multipart task form. An oversized body is reported
// as a photo field error rather than failing the request.
func (h *TaskHandler) parseTaskForm(w http.ResponseWriter, r *http.Request) (planner.TaskInput, map[string]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return planner.TaskInput{}, map[string]string{
				"photo": fmt.Sprintf("File size must not exceed %dMB.", h.maxUploadBytes>>20),
			}, true
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return planner.TaskInput{}, nil, false
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return planner.TaskInput{}, nil, false
		}
	}

	in := planner.TaskInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		TaskDate:    r.PostFormValue("task_date"),
		Status:      r.PostFormValue("status"),
		RemovePhoto: r.PostFormValue("remove_photo") != "",
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("photo"); err == nil {
			in.Photo = &planner.PhotoUpload{Filename: header.Filename, Size: header.Size, Content: file}
		}
	}
	return in, nil, true
}

func (h *TaskHandler) formError(w http.ResponseWriter, r *http.Request, p *domain.Plan, t *domain.Task, in planner.TaskInput, err error) {
	var verr *planner.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, http.StatusBadRequest, p, t, in, verr.Fields)
		return
	}
	h.pages.fail(w, r, err)
}

func (h *TaskHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, p *domain.Plan, t *domain.Task, in planner.TaskInput, fieldErrors map[string]string) {
	h.pages.Page(w, r, status, "task_form.html", map[string]interface{}{
		"IsEdit": t != nil,
		"Plan":   p,
		"Task":   t,
		"Form":   in,
		"Errors": fieldErrors,
	})
}

func closePhoto(in planner.TaskInput) {
	if in.Photo == nil {
		return
	}
	if c, ok := in.Photo.Content.(io.Closer); ok {
		c.Close()
	}
}
