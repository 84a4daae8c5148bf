// File: internal/handlers/page_handlers.go
package handlers

import (
	"net/http"
)

type PageHandler struct {
	pages *Renderer
}

func NewPageHandler(pages *Renderer) *PageHandler {
	return &PageHandler{pages: pages}
}

func (h *PageHandler) ShowAboutPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, http.StatusOK, "about.html", nil)
}

func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.pages.Error(w, r, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist.")
}

func (h *PageHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.pages.Error(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "The method is not allowed for this resource.")
}
