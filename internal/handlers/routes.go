// File: internal/handlers/routes.go
package handlers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/ratelimit"
)

// Routes collects everything the router dispatches to.
type Routes struct {
	Auth  *AuthHandler
	Pages *PageHandler
	Plans *PlanHandler
	Tasks *TaskHandler
	Chat  *ChatHandler

	Tokens        middleware.TokenValidator
	AuthLimiter   *ratelimit.MemoryRateLimiter
	ChatLimiter   *ratelimit.MemoryRateLimiter
	Logger        middleware.Logger
	Static        fs.FS
	MediaDir      string
	SecureCookies bool
}

// NewRouter registers every route. Static must hold the asset files at its root.
func NewRouter(rt Routes) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(rt.Logger))
	r.Use(middleware.RequestLogger(rt.Logger))

	authLimit := middleware.RateLimitMiddleware(rt.AuthLimiter, LoginLimit, middleware.ClientIPKey)
	registerLimit := middleware.RateLimitMiddleware(rt.AuthLimiter, RegisterLimit, middleware.ClientIPKey)

	// --- Public Routes ---
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(rt.Static))))
	r.HandleFunc("/health", rt.Pages.Health).Methods("GET")
	r.HandleFunc("/about", rt.Pages.ShowAboutPage).Methods("GET")
	r.HandleFunc("/login", rt.Auth.ShowLoginPage).Methods("GET")
	r.Handle("/login", authLimit(http.HandlerFunc(rt.Auth.Login))).Methods("POST")
	r.HandleFunc("/register", rt.Auth.ShowRegisterPage).Methods("GET")
	r.Handle("/register", registerLimit(http.HandlerFunc(rt.Auth.Register))).Methods("POST")
	r.HandleFunc("/logout", rt.Auth.Logout).Methods("GET")

	// --- Protected Routes ---
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(middleware.NewJWTMiddleware(rt.Tokens, rt.SecureCookies))

	protected.HandleFunc("/", rt.Plans.Dashboard).Methods("GET")
	protected.HandleFunc("/plan/create", rt.Plans.ShowCreateForm).Methods("GET")
	protected.HandleFunc("/plan/create", rt.Plans.Create).Methods("POST")
	protected.HandleFunc("/plan/{id:[0-9]+}", rt.Plans.Detail).Methods("GET")
	protected.HandleFunc("/plan/{id:[0-9]+}/edit", rt.Plans.ShowEditForm).Methods("GET")
	protected.HandleFunc("/plan/{id:[0-9]+}/edit", rt.Plans.Edit).Methods("POST")
	protected.HandleFunc("/plan/{id:[0-9]+}/delete", rt.Plans.ShowDeleteConfirm).Methods("GET")
	protected.HandleFunc("/plan/{id:[0-9]+}/delete", rt.Plans.Delete).Methods("POST")

	protected.HandleFunc("/plan/{id:[0-9]+}/task/create", rt.Tasks.ShowCreateForm).Methods("GET")
	protected.HandleFunc("/plan/{id:[0-9]+}/task/create", rt.Tasks.Create).Methods("POST")
	protected.HandleFunc("/task/{id:[0-9]+}/edit", rt.Tasks.ShowEditForm).Methods("GET")
	protected.HandleFunc("/task/{id:[0-9]+}/edit", rt.Tasks.Edit).Methods("POST")
	protected.HandleFunc("/task/{id:[0-9]+}/delete", rt.Tasks.ShowDeleteConfirm).Methods("GET")
	protected.HandleFunc("/task/{id:[0-9]+}/delete", rt.Tasks.Delete).Methods("POST")
	protected.HandleFunc("/task/{id:[0-9]+}/toggle", rt.Tasks.ToggleStatus).Methods("POST")

	chatLimit := middleware.RateLimitMiddleware(rt.ChatLimiter, ChatLimit, middleware.UserKey)
	protected.HandleFunc("/chat", rt.Chat.ShowChatPage).Methods("GET")
	protected.Handle("/chat/send", chatLimit(http.HandlerFunc(rt.Chat.SendMessage))).Methods("POST")
	protected.HandleFunc("/chat/new", rt.Chat.NewConversation).Methods("POST")
	protected.HandleFunc("/chat/proposal/{id:[0-9]+}/accept", rt.Chat.AcceptProposal).Methods("POST")
	protected.HandleFunc("/chat/conversation/{id:[0-9]+}/delete", rt.Chat.DeleteConversation).Methods("POST")

	protected.HandleFunc("/api/plans", rt.Plans.ListPlans).Methods("GET")
	protected.PathPrefix("/media/").Handler(http.StripPrefix("/media/", filesOnly(rt.Tasks.PhotoGuard(http.FileServer(http.Dir(rt.MediaDir))))))

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(rt.Pages.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(rt.Pages.MethodNotAllowed)

	return r
}

// filesOnly hides directory listings.
func filesOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
