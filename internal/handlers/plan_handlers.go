// File: internal/handlers/plan_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/dtos"
	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/services/planner"
)

type PlanHandler struct {
	plans *planner.PlanService
	pages *Renderer
}

func NewPlanHandler(plans *planner.PlanService, pages *Renderer) *PlanHandler {
	return &PlanHandler{plans: plans, pages: pages}
}

// Dashboard lists the user's plans with their progress.
func (h *PlanHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	summaries, err := h.plans.List(r.Context(), userID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}
	h.pages.Page(w, r, http.StatusOK, "dashboard.html", map[string]interface{}{"Plans": summaries})
}

// ListPlans is the JSON listing of the user's plans.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	summaries, err := h.plans.List(r.Context(), userID)
	if err != nil {
		writeError(w, publicMessage(err), statusFor(err))
		return
	}
	out := make([]dtos.PlanResponseDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, dtos.FromPlan(s.Plan, s.Stats, s.IsComplete))
	}
	writeJSON(w, http.StatusOK, dtos.CreateSuccessResponse(out, ""))
}

func (h *PlanHandler) ShowCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, nil, planner.PlanInput{Color: domain.DefaultPlanColor}, nil)
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	in, ok := h.parsePlanForm(w, r)
	if !ok {
		return
	}
	created, err := h.plans.Create(r.Context(), userID, in)
	if err != nil {
		h.formError(w, r, nil, in, err)
		return
	}
	http.Redirect(w, r, planURL(created.ID), http.StatusSeeOther)
}

// Detail shows the plan with its month calendar. Bad ?year/?month values are
// rejected before the plan is loaded.
func (h *PlanHandler) Detail(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	planID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError("plan_detail", userID, nil))
		return
	}
	q := r.URL.Query()
	view, err := h.plans.Calendar(r.Context(), userID, planID, q.Get("year"), q.Get("month"))
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}
	h.pages.Page(w, r, http.StatusOK, "plan_detail.html", map[string]interface{}{
		"Plan":       view.Plan,
		"Calendar":   view,
		"Stats":      view.Plan.Stats(),
		"IsComplete": view.Plan.IsComplete(),
	})
}

func (h *PlanHandler) ShowEditForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlan(w, r, "edit_plan")
	if !ok {
		return
	}
	in := planner.PlanInput{
		Title:       p.Title,
		Description: p.Description,
		Color:       p.Color,
		StartDate:   p.StartDate.Format(domain.DateLayout),
	}
	if p.EndDate != nil {
		in.EndDate = p.EndDate.Format(domain.DateLayout)
	}
	h.renderForm(w, r, http.StatusOK, p, in, nil)
}

func (h *PlanHandler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlan(w, r, "edit_plan")
	if !ok {
		return
	}
	in, ok := h.parsePlanForm(w, r)
	if !ok {
		return
	}
	updated, err := h.plans.Update(r.Context(), p.UserID, p.ID, in)
	if err != nil {
		h.formError(w, r, p, in, err)
		return
	}
	http.Redirect(w, r, planURL(updated.ID), http.StatusSeeOther)
}

func (h *PlanHandler) ShowDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownedPlan(w, r, "delete_plan")
	if !ok {
		return
	}
	h.pages.Page(w, r, http.StatusOK, "plan_confirm_delete.html", map[string]interface{}{"Plan": p})
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	planID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError("delete_plan", userID, nil))
		return
	}
	if err := h.plans.Delete(r.Context(), userID, planID); err != nil {
		h.pages.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PlanHandler) ownedPlan(w http.ResponseWriter, r *http.Request, operation string) (*domain.Plan, bool) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	planID, ok := pathID(r, "id")
	if !ok {
		h.pages.fail(w, r, planner.NewNotFoundError(operation, userID, nil))
		return nil, false
	}
	p, err := h.plans.Get(r.Context(), userID, planID)
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, false
	}
	return p, true
}

func (h *PlanHandler) parsePlanForm(w http.ResponseWriter, r *http.Request) (planner.PlanInput, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return planner.PlanInput{}, false
	}
	return planner.PlanInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Color:       r.PostFormValue("color"),
		StartDate:   r.PostFormValue("start_date"),
		EndDate:     r.PostFormValue("end_date"),
	}, true
}

// formError re-renders the form with field errors, or fails the request.
func (h *PlanHandler) formError(w http.ResponseWriter, r *http.Request, p *domain.Plan, in planner.PlanInput, err error) {
	var verr *planner.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, r, http.StatusBadRequest, p, in, verr.Fields)
		return
	}
	h.pages.fail(w, r, err)
}

func (h *PlanHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, p *domain.Plan, in planner.PlanInput, fieldErrors map[string]string) {
	h.pages.Page(w, r, status, "plan_form.html", map[string]interface{}{
		"IsEdit": p != nil,
		"Plan":   p,
		"Form":   in,
		"Errors": fieldErrors,
	})
}

func planURL(planID uint) string {
	return fmt.Sprintf("/plan/%d", planID)
}
