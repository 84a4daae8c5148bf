// File: cmd/server/main.go
package main

import (
	"context"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-planner/internal/config"
	"github.com/iyunix/go-planner/internal/handlers"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger := services.NewLogger("planner")

	db, err := repository.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	media, err := storage.NewMediaStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("Media storage error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	planRepo := plan.NewPlanRepository(db)
	taskRepo := task.NewTaskRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := message.NewMessageRepository(db)
	proposalRepo := proposal.NewProposalRepository(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.LLMAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.MaxTokens = cfg.LLMMaxTokens
	if err := aiConfig.Validate(); err != nil {
		logger.Warn("assistant is not fully configured; replies will be apologies", "error", err)
	}
	assistant := ai.NewAssistant(ai.NewOpenAIProvider(aiConfig), logger)

	plannerConfig := planner.DefaultConfig()
	plannerConfig.MaxPhotoBytes = cfg.MaxUploadBytes()
	if err := plannerConfig.Validate(); err != nil {
		log.Fatalf("Planner configuration error: %v", err)
	}
	planService := planner.NewPlanService(plannerConfig, planRepo, media, logger)
	taskService := planner.NewTaskService(plannerConfig, planRepo, taskRepo, media, logger)

	chatConfig := chat.DefaultConfig()
	conversationService := chat.NewConversationService(chatConfig, chatRepo, messageRepo, proposalRepo, assistant, logger)
	acceptanceService := chat.NewAcceptanceService(chatConfig, proposalRepo, logger)

	lockoutService := user_services.NewLockoutService(userRepo, logger)
	authService := user_services.NewAuthService(userRepo, lockoutService, cfg.JWTSecretKey, logger)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	chatLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.ChatConfig())
	defer chatLimiter.Close()

	// --- Handlers ---
	markdown := render.NewMarkdown()
	pages, err := handlers.NewRenderer(web.Templates, markdown)
	if err != nil {
		log.Fatalf("Template error: %v", err)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		log.Fatalf("Static assets error: %v", err)
	}

	secureCookies := cfg.IsProduction()
	router := handlers.NewRouter(handlers.Routes{
		Auth:          handlers.NewAuthHandler(authService, authLimiter, pages, secureCookies),
		Pages:         handlers.NewPageHandler(pages),
		Plans:         handlers.NewPlanHandler(planService, pages),
		Tasks:         handlers.NewTaskHandler(taskService, pages, cfg.MaxUploadBytes()),
		Chat:          handlers.NewChatHandler(conversationService, acceptanceService, markdown, pages),
		Tokens:        authService,
		AuthLimiter:   authLimiter,
		ChatLimiter:   chatLimiter,
		Logger:        logger,
		Static:        static,
		MediaDir:      media.Root(),
		SecureCookies: secureCookies,
	})

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:              port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Replies from the language model can take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	logger.Info("server starting",
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
		"database", cfg.DatabasePath,
		"model", cfg.LLMModel,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}
