// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/ratelimit"
	"github.com/iyunix/go-planner/internal/services/user_services"
)

// LoginLimit and RegisterLimit name the rate limit buckets of the auth forms.
const (
	LoginLimit    = "login"
	RegisterLimit = "register"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	auth          *user_services.AuthService
	limiter       *ratelimit.MemoryRateLimiter
	pages         *Renderer
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *user_services.AuthService, limiter *ratelimit.MemoryRateLimiter, pages *Renderer, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, pages: pages, secureCookies: secureCookies}
}

func (h *AuthHandler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, http.StatusOK, "login.html", nil)
}

func (h *AuthHandler) ShowRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Page(w, r, http.StatusOK, "register.html", nil)
}

// Register handles new user registrations, including form validation and rendering.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	_, token, err := h.auth.Register(r.Context(), username, r.FormValue("password"), r.FormValue("password_confirm"))
	if err != nil {
		data := map[string]interface{}{"Username": username}
		var regErr *user_services.RegistrationError
		if errors.As(err, &regErr) {
			data["Errors"] = regErr.Fields
			h.pages.Page(w, r, http.StatusBadRequest, "register.html", data)
			return
		}
		log.Printf("Registration error: %v", err)
		data["Error"] = "Registration failed. Please try again."
		h.pages.Page(w, r, http.StatusInternalServerError, "register.html", data)
		return
	}

	middleware.SetAuthCookie(w, token, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login validates user credentials, sets the auth cookie, and redirects to the dashboard.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.pages.Page(w, r, http.StatusBadRequest, "login.html", map[string]interface{}{
			"Username": username,
			"Error":    "Username and password are required.",
		})
		return
	}

	clientIP := ratelimit.GetClientIP(r)
	_, token, err := h.auth.Login(r.Context(), username, password, clientIP)
	if err != nil {
		data := map[string]interface{}{"Username": username}
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, user_services.ErrAccountLocked):
			data["Error"] = "Too many failed login attempts. Please try again in 15 minutes."
			status = http.StatusTooManyRequests
		case errors.Is(err, user_services.ErrInvalidCredentials):
			data["Error"] = "Please enter a correct username and password."
		default:
			log.Printf("Login error: %v", err)
			data["Error"] = "Login failed. Please try again."
			status = http.StatusInternalServerError
		}
		h.pages.Page(w, r, status, "login.html", data)
		return
	}

	if h.limiter != nil {
		h.limiter.RecordSuccess(LoginLimit + ":" + clientIP)
	}
	middleware.SetAuthCookie(w, token, h.secureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w, h.secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
