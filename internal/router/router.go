package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/handler"
	"github.com/mocktestapp/mocktest-backend/internal/middleware"
	"github.com/mocktestapp/mocktest-backend/internal/response"
	"github.com/mocktestapp/mocktest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Test       *handler.TestHandler
	Attempt    *handler.AttemptHandler
	History    *handler.HistoryHandler
	Generation *handler.GenerationHandler
	Assistant  *handler.AssistantHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters: login is brute-forceable, generation and assistant
	// calls are expensive upstream.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	aiLimiter := middleware.NewRateLimiter(20, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
		auth.PUT("/me", middleware.RequireAuth(authService), handlers.Auth.UpdateProfile)
	}

	// ─── 2. Application Group (JWT + active session) ───────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/tests", handlers.Test.List)
		api.POST("/tests", handlers.Test.Create)
		api.GET("/tests/:id", handlers.Test.Get)
		api.DELETE("/tests/:id", handlers.Test.Delete)

		api.POST("/attempts", handlers.Attempt.Start)
		api.GET("/attempts/:id", handlers.Attempt.State)
		api.POST("/attempts/:id/select", handlers.Attempt.SelectOption)
		api.POST("/attempts/:id/save-next", handlers.Attempt.SaveAndNext)
		api.POST("/attempts/:id/mark-next", handlers.Attempt.MarkAndNext)
		api.POST("/attempts/:id/clear", handlers.Attempt.ClearResponse)
		api.POST("/attempts/:id/jump", handlers.Attempt.JumpTo)
		api.POST("/attempts/:id/pause", handlers.Attempt.Pause)
		api.POST("/attempts/:id/resume", handlers.Attempt.Resume)
		api.POST("/attempts/:id/submit", handlers.Attempt.Submit)

		api.GET("/history", handlers.History.List)
		api.GET("/history/:id", handlers.History.Get)
		api.DELETE("/history", handlers.History.Clear)

		// AI routes are only mounted when a Gemini provider could be
		// constructed; without an API key the rest of the app still runs.
		if handlers.Generation != nil {
			api.POST("/generate", aiLimiter.Middleware(), handlers.Generation.Generate)
		}
		if handlers.Assistant != nil {
			api.POST("/assistant/explain", aiLimiter.Middleware(), handlers.Assistant.Explain)
			api.POST("/assistant/translate", aiLimiter.Middleware(), handlers.Assistant.Translate)
			api.POST("/assistant/chat", aiLimiter.Middleware(), handlers.Assistant.Chat)
		}
	}

	// ─── 3. WebSocket Group (WS auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/attempts/:id/stream", handlers.WS.AttemptStream)
	}

	return router
}
