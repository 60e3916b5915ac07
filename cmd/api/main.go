package main

import (
	"log"
	"os"

	"github.com/davidkiarie/opsdeck-api/internal/application/service"
	"github.com/davidkiarie/opsdeck-api/internal/config"
	"github.com/davidkiarie/opsdeck-api/internal/infrastructure/database"
	"github.com/davidkiarie/opsdeck-api/internal/infrastructure/repository"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/handler"
	"github.com/davidkiarie/opsdeck-api/internal/presentation/http/routes"
	"github.com/davidkiarie/opsdeck-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	pnlRepo := repository.NewPnlRepository(db)
	pnlFallback := repository.NewMemoryPnlRepository()
	eventRepo := repository.NewEventRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtManager)
	eventService := service.NewEventService(eventRepo)
	pnlService := service.NewPnlService(pnlRepo, pnlFallback, eventService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Pnl:   handler.NewPnlHandler(pnlService),
		Event: handler.NewEventHandler(eventService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
