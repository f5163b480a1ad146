package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/database"
	"github.com/mocktestapp/mocktest-backend/internal/gemini"
	"github.com/mocktestapp/mocktest-backend/internal/handler"
	"github.com/mocktestapp/mocktest-backend/internal/logger"
	"github.com/mocktestapp/mocktest-backend/internal/ranking"
	"github.com/mocktestapp/mocktest-backend/internal/repository"
	"github.com/mocktestapp/mocktest-backend/internal/router"
	"github.com/mocktestapp/mocktest-backend/internal/service"
	"github.com/mocktestapp/mocktest-backend/internal/session"
	"github.com/mocktestapp/mocktest-backend/internal/validator"
	"github.com/mocktestapp/mocktest-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting MockTest Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	scoreRepo := repository.NewScoreRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	historyCache := repository.NewHistoryCache(rdb, cfg.HistoryCacheLimit)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, rdb, log)
	testService := service.NewTestService(testRepo, log)
	rankingService := ranking.NewService(scoreRepo, log)
	resultService := service.NewResultService(cfg, rankingService, historyRepo, historyCache, rdb, log)
	historyService := service.NewHistoryService(historyRepo, historyCache, cfg.HistoryCacheLimit, log)

	// ─── Session Manager ──────────────────────────────────────────────
	manager := session.NewManager(resultService.Finish, log)

	// ─── Gemini Provider (optional) ───────────────────────────────────
	var (
		generationHandler *handler.GenerationHandler
		assistantHandler  *handler.AssistantHandler
	)
	provider, err := gemini.NewProvider(ctx, log)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini unavailable, generation and assistant routes disabled")
	} else {
		generationHandler = handler.NewGenerationHandler(provider, cfg.MaxUploadBytes)
		assistantHandler = handler.NewAssistantHandler(provider, cfg.MaxUploadBytes)
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Test:       handler.NewTestHandler(testService),
		Attempt:    handler.NewAttemptHandler(manager, testService),
		History:    handler.NewHistoryHandler(historyService),
		Generation: generationHandler,
		Assistant:  assistantHandler,
		WS:         handler.NewWSHandler(manager, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Loops ───────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	historyWorker := worker.NewHistoryWorker(historyRepo, rdb, log)
	go historyWorker.Start(workerCtx)
	go manager.Run(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the session clock and workers; allow the retry queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
