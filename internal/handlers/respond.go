// File: internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-planner/internal/dtos"
	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/services/chat"
	"github.com/iyunix/go-planner/internal/services/planner"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.CreateErrorResponse(message, nil))
}

// pathID reads a numeric route variable.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrValidation),
		errors.Is(err, planner.ErrInvalidParameter),
		errors.Is(err, chat.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrNotFound),
		errors.Is(err, chat.ErrNotFound),
		errors.Is(err, chat.ErrAlreadyAccepted):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to show a client.
func publicMessage(err error) string {
	var chatErr *chat.ChatError
	var planErr *planner.PlanError
	var verr *planner.ValidationError
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return "Message cannot be empty"
	case errors.Is(err, chat.ErrAlreadyAccepted):
		return "Proposal not found or already accepted"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &chatErr) && chatErr.Type != chat.ErrTypeInternal:
		return chatErr.Message
	case errors.As(err, &planErr) && planErr.Type != planner.ErrTypeInternal:
		return planErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// fail renders err as an error page, or as JSON for AJAX callers.
func (rd *Renderer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if middleware.WantsJSON(r) {
		writeError(w, publicMessage(err), status)
		return
	}
	switch status {
	case http.StatusNotFound:
		rd.Error(w, r, status, "Page Not Found", "The page you are looking for does not exist.")
	case http.StatusBadRequest:
		rd.Error(w, r, status, "Bad Request", publicMessage(err))
	default:
		rd.Error(w, r, status, "Server Error", "Something went wrong. Please try again.")
	}
}
