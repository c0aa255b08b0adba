package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studydesk-backend/internal/config"
	"studydesk-backend/internal/database"
	"studydesk-backend/internal/handlers"
	"studydesk-backend/internal/logger"
	"studydesk-backend/internal/middleware"
	"studydesk-backend/internal/repository"
	"studydesk-backend/internal/router"
	"studydesk-backend/internal/services"
	"studydesk-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	if err := logger.Initialize(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	logger.Get().Info("Starting quiz backend", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()

	if err != nil {
		logger.Get().Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run wires the server and blocks until ctx is cancelled. Deferred cleanup always runs before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	lg := logger.Get()

	// ──── Step 2: Gemini Client ────
	gemini, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:           cfg.GeminiAPIKey,
		Model:            cfg.GeminiModel,
		ConcurrentReqs:   cfg.GeminiConcurrentReqs,
		ExtractMaxTokens: cfg.ExtractMaxTokens,
		Temperature:      cfg.QuestionTemperature,
	})
	if err != nil {
		return fmt.Errorf("gemini client initialization failed: %w", err)
	}
	defer gemini.Close()
	lg.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))

	// ──── Step 3: Quiz Pipeline ────
	var extractor services.TextExtractor = gemini
	if cfg.Extractor == "local" {
		extractor = services.NewLocalExtractor()
	}
	generator := services.NewQuizGenerator(
		services.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxPDFBytes),
		extractor,
		gemini,
	)
	lg.Info("Quiz pipeline ready", zap.String("extractor", cfg.Extractor))

	// ──── Step 4: Rate Limiter (Redis when configured) ────
	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer rdb.Close()
		limiter = middleware.NewRedisRateLimiter(rdb, "generate-quiz", cfg.GenerateRateLimit, time.Minute)
		lg.Info("Redis connected")
	} else {
		mem := middleware.NewRateLimiter(cfg.GenerateRateLimit, time.Minute)
		mem.StartCleanup(ctx)
		limiter = mem
	}

	// ──── Step 5: PostgreSQL + Dashboard (optional) ────
	var activity handlers.ActivityRecorder
	var dashboard *router.Dashboard
	storageDir := ""

	if cfg.DashboardEnabled() {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("postgres connection failed: %w", err)
		}
		defer pool.Close()

		if err := database.RunMigrations(pool, migrations.Files); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		lg.Info("PostgreSQL connected, migrations applied")

		store, err := services.NewLocalStorage(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("storage initialization failed: %w", err)
		}
		storageDir = store.Root()

		flashcardRepo := repository.NewFlashcardRepo(pool)
		pastQuestionRepo := repository.NewPastQuestionRepo(pool)
		resourceRepo := repository.NewResourceRepo(pool)
		courseRepo := repository.NewCourseRepo(pool)
		activityRepo := repository.NewActivityRepo(pool)
		activity = activityRepo

		dashboard = &router.Dashboard{
			Flashcards:    handlers.NewFlashcardHandler(flashcardRepo),
			PastQuestions: handlers.NewPastQuestionHandler(pastQuestionRepo, store, cfg.PublicBaseURL, cfg.MaxPDFBytes),
			Resources:     handlers.NewResourceHandler(resourceRepo),
			Courses:       handlers.NewCourseHandler(courseRepo),
			Activity:      handlers.NewActivityHandler(activityRepo),
			Stats:         handlers.NewDashboardHandler(flashcardRepo, resourceRepo, courseRepo, pastQuestionRepo, activityRepo),
		}
	} else {
		lg.Warn("DATABASE_URL not set, dashboard routes disabled")
	}

	// ──── Step 6: HTTP Server ────
	r := router.New(router.Options{
		JWTAuth:         middleware.NewJWTAuth(cfg.JWTSecret),
		Quiz:            handlers.NewQuizHandler(generator, activity),
		GenerateLimiter: limiter,
		Dashboard:       dashboard,
		StorageDir:      storageDir,
		FrontendURL:     cfg.FrontendURL,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		lg.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	lg.Info("Server ready", zap.String("addr", "http://localhost:"+cfg.Port))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-shutdownDone
	return nil
}
