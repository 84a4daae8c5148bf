package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-planner/internal/middleware"
	"github.com/iyunix/go-planner/internal/ratelimit"
	"github.com/iyunix/go-planner/internal/render"
	"github.com/iyunix/go-planner/internal/repository"
	chatrepo "github.com/iyunix/go-planner/internal/repository/chat"
	"github.com/iyunix/go-planner/internal/repository/message"
	"github.com/iyunix/go-planner/internal/repository/plan"
	"github.com/iyunix/go-planner/internal/repository/proposal"
	"github.com/iyunix/go-planner/internal/repository/task"
	"github.com/iyunix/go-planner/internal/repository/user"
	"github.com/iyunix/go-planner/internal/services"
	"github.com/iyunix/go-planner/internal/services/ai"
	"github.com/iyunix/go-planner/internal/services/chat"
	"github.com/iyunix/go-planner/internal/services/planner"
	"github.com/iyunix/go-planner/internal/services/user_services"
	"github.com/iyunix/go-planner/internal/storage"
	"github.com/iyunix/go-planner/web"
)

type cannedReplier struct {
	reply string
}

func (c *cannedReplier) Reply(ctx context.Context, turns []ai.Turn) string {
	return c.reply
}

type testApp struct {
	router   http.Handler
	db       *gorm.DB
	auth     *user_services.AuthService
	replier  *cannedReplier
	mediaDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mediaDir := t.TempDir()
	media, err := storage.NewMediaStore(mediaDir)
	require.NoError(t, err)

	logger := &services.NoOpLogger{}
	userRepo := user.NewGormUserRepository(db)
	planRepo := plan.NewPlanRepository(db)
	taskRepo := task.NewTaskRepository(db)
	proposalRepo := proposal.NewProposalRepository(db)

	replier := &cannedReplier{reply: "Tell me more about your plan."}
	conversations := chat.NewConversationService(chat.DefaultConfig(), chatrepo.NewChatRepository(db), message.NewMessageRepository(db), proposalRepo, replier, logger)
	acceptance := chat.NewAcceptanceService(chat.DefaultConfig(), proposalRepo, logger)
	authService := user_services.NewAuthService(userRepo, user_services.NewLockoutService(userRepo, logger), "test-secret", logger)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	chatLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.ChatConfig())
	t.Cleanup(authLimiter.Close)
	t.Cleanup(chatLimiter.Close)

	markdown := render.NewMarkdown()
	pages, err := NewRenderer(web.Templates, markdown)
	require.NoError(t, err)
	static, err := fs.Sub(web.Static, "static")
	require.NoError(t, err)

	router := NewRouter(Routes{
		Auth:        NewAuthHandler(authService, authLimiter, pages, false),
		Pages:       NewPageHandler(pages),
		Plans:       NewPlanHandler(planner.NewPlanService(nil, planRepo, media, logger), pages),
		Tasks:       NewTaskHandler(planner.NewTaskService(nil, planRepo, taskRepo, media, logger), pages, 5<<20),
		Chat:        NewChatHandler(conversations, acceptance, markdown, pages),
		Tokens:      authService,
		AuthLimiter: authLimiter,
		ChatLimiter: chatLimiter,
		Logger:      logger,
		Static:      static,
		MediaDir:    mediaDir,
	})

	return &testApp{router: router, db: db, auth: authService, replier: replier, mediaDir: mediaDir}
}

// signUp registers a user and returns its session token.
func (a *testApp) signUp(t *testing.T, username string) string {
	t.Helper()
	_, token, err := a.auth.Register(context.Background(), username, "password123", "password123")
	require.NoError(t, err)
	return token
}

func (a *testApp) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path, token string) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (a *testApp) postForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, token)
}

func (a *testApp) postJSON(path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return a.serve(req, token)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func validPlanForm() url.Values {
	return url.Values{
		"title":       {"Lisbon Weekend"},
		"description": {"Two days"},
		"color":       {"#10B981"},
		"start_date":  {"2025-06-07"},
		"end_date":    {"2025-06-08"},
	}
}
