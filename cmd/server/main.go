package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stellarstep/internal/ai"
	"stellarstep/internal/config"
	"stellarstep/internal/database"
	"stellarstep/internal/handlers"
	"stellarstep/internal/repository"
	"stellarstep/internal/security"
	"stellarstep/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	userService := service.NewUserService(db, userRepo, progressRepo, activityRepo)
	progressService := service.NewProgressService(db, progressRepo, activityRepo, userRepo, emailService)
	taskService := service.NewTaskService(taskRepo, progressService)

	gateway := ai.NewGateway(ai.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel))
	if cfg.GroqAPIKey == "" {
		log.Println("Warning: GROQ_API_KEY not set, AI routes will fail until configured")
	}

	tokenIssuer := security.NewParentTokenIssuer(cfg.ParentTokenSecret, cfg.ParentTokenTTL)

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(rateLimiter, tokenIssuer)
	userHandler := handlers.NewUserHandler(userService, tokenIssuer)
	taskHandler := handlers.NewTaskHandler(taskService)
	progressHandler := handlers.NewProgressHandler(progressService)
	aiHandler := handlers.NewAIHandler(gateway)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":   true,
			"message":   "StellarStep API is running",
			"timestamp": time.Now().UTC(),
		})
	})

	// User routes
	mux.HandleFunc("POST /api/user/create", userHandler.Create)
	mux.HandleFunc("GET /api/user/{firebaseUid}", userHandler.Get)
	mux.HandleFunc("PUT /api/user/{firebaseUid}", userHandler.Update)
	mux.HandleFunc("POST /api/user/parent-password", middleware.RequireParent(userHandler.SetParentPassword))
	mux.HandleFunc("POST /api/user/verify-parent", userHandler.VerifyParent)

	// Task routes
	mux.HandleFunc("GET /api/task/{userId}", taskHandler.List)
	mux.HandleFunc("GET /api/task/{userId}/today", taskHandler.ListToday)
	mux.HandleFunc("POST /api/task", taskHandler.Create)
	mux.HandleFunc("PUT /api/task/{taskId}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/task/{taskId}", taskHandler.Delete)

	// Progress routes
	mux.HandleFunc("GET /api/progress/{userId}", progressHandler.Get)
	mux.HandleFunc("POST /api/progress/badge", progressHandler.AwardBadge)
	mux.HandleFunc("POST /api/progress/game-played", progressHandler.GamePlayed)
	mux.HandleFunc("GET /api/progress/logs/{userId}", middleware.RequireParent(progressHandler.Logs))

	// AI routes (rate limited: each call costs an upstream request)
	mux.HandleFunc("POST /api/ai/reinforcement", middleware.RateLimit(aiHandler.Reinforcement))
	mux.HandleFunc("POST /api/ai/simplify", middleware.RateLimit(aiHandler.Simplify))
	mux.HandleFunc("GET /api/ai/space-fact", middleware.RateLimit(aiHandler.SpaceFact))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
