package routes

import (
	"time"

	"github.com/davidkiarie/opsdeck-api/internal/config"
	domainRepo "github.com/davidkiarie/opsdeck-api/internal/domain/repository"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/handler"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/middleware"
	"github.com/davidkiarie/opsdeck-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth  *handler.AuthHandler
	Pnl   *handler.PnlHandler
	Event *handler.EventHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PATCH("/profile", h.Auth.UpdateProfile)
	protected.POST("/profile/password", h.Auth.ChangePassword)

	// P&L workspaces
	registerPnlRoutes(protected, h, deps)

	// Event records
	registerEventRoutes(protected, h)
}

func registerPnlRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	pnl := protected.Group("/pnl")
	pnl.Use(middleware.RequirePermission("manage-pnl"))
	{
		pnl.GET("", h.Pnl.List)
		pnl.GET("/workspace", h.Pnl.Workspace)
		// Save uses idempotency middleware to prevent duplicate aggregates
		pnl.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Pnl.Save)
		pnl.GET("/:id", h.Pnl.Get)
		pnl.DELETE("/:id", h.Pnl.Archive)

		pnl.POST("/:id/revenue-lines", h.Pnl.AddRevenueLine)
		pnl.PATCH("/:id/revenue-lines/:line_id", h.Pnl.UpdateRevenueLine)
		pnl.DELETE("/:id/revenue-lines/:line_id", h.Pnl.RemoveRevenueLine)

		pnl.POST("/:id/cost-lines", h.Pnl.AddCostLine)
		pnl.PATCH("/:id/cost-lines/:line_id", h.Pnl.UpdateCostLine)
		pnl.DELETE("/:id/cost-lines/:line_id", h.Pnl.RemoveCostLine)

		pnl.PATCH("/:id/meta", h.Pnl.UpdateMeta)
		pnl.POST("/:id/scenario", h.Pnl.ApplyScenario)

		pnl.POST("/:id/submit", h.Pnl.Submit)
		// Approval provisions the linked event record, so duplicates matter
		pnl.POST("/:id/approve", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Pnl.Approve)
		pnl.POST("/:id/reject", h.Pnl.Reject)
	}
}

func registerEventRoutes(protected *gin.RouterGroup, h *Handlers) {
	events := protected.Group("/events")
	events.Use(middleware.RequirePermission("manage-events"))
	{
		events.GET("", h.Event.List)
		events.GET("/:id", h.Event.Get)
		events.PATCH("/:id", h.Event.Update)
		events.DELETE("/:id", h.Event.Delete)
	}
}
