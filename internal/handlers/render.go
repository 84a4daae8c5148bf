// File: internal/handlers/render.go
package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/iyunix/go-planner/internal/domain"
	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/render"
)

var pageTemplates = []string{
	"login.html", "register.html", "about.html", "error.html",
	"dashboard.html", "plan_form.html", "plan_detail.html", "plan_confirm_delete.html",
	"task_form.html", "task_confirm_delete.html", "chat.html",
}

// Renderer holds one parsed template set per page, each layered on layout.html.
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer parses every page from files, which must contain templates/.
func NewRenderer(files fs.FS, markdown *render.Markdown) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template), now: time.Now}

	funcs := template.FuncMap{
		"markdown": markdown.ToHTML,
		"date": func(t time.Time) string {
			return t.Format(domain.DateLayout)
		},
		"longdate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"optdate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(domain.DateLayout)
		},
		"overdue": func(t domain.Task) bool {
			return t.IsOverdue(r.now())
		},
		"percent": func(stats domain.TaskStats) int {
			if stats.Total == 0 {
				return 0
			}
			return stats.Completed * 100 / stats.Total
		},
	}

	for _, name := range pageTemplates {
		ts, err := template.New(name).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = ts
	}
	return r, nil
}

// Page renders name with status. The output is buffered so a template error
// still produces a clean 500.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	addSecurityHeaders(w)

	if data == nil {
		data = make(map[string]interface{})
	}
	_, data["Authenticated"] = middleware.UserIDFromContext(r.Context())

	t, ok := rd.pages[name]
	if !ok {
		log.Printf("Template %s not found in cache", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("Template render error for %s: %v", name, err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Error renders the error page.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message, description string) {
	rd.Page(w, r, status, "error.html", map[string]interface{}{
		"Code":        status,
		"Message":     message,
		"Description": description,
	})
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
