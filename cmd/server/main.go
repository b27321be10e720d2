package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nutriquest/internal/config"
	"nutriquest/internal/database"
	"nutriquest/internal/handlers"
	"nutriquest/internal/repository"
	"nutriquest/internal/security"
	"nutriquest/internal/service"
)

const (
	sweepInterval        = time.Minute
	limiterCleanupPeriod = time.Hour
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	contentRepo := repository.NewContentRepository(db)
	tutorialRepo := repository.NewTutorialRepository(db)
	resultRepo := repository.NewResultRepository(db)
	contactRepo := repository.NewContactRepository(db)

	contentService := service.NewContentService(contentRepo, cfg.Debug)
	if err := contentService.SeedFromFile(ctx, cfg.ContentPath, false); err != nil {
		log.Printf("Warning: Failed to seed content pack: %v", err)
	}

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	resultService := service.NewResultService(resultRepo, contactRepo, emailService, cfg.Debug)
	sessionService := service.NewSessionService(contentService, tutorialRepo, resultService, cfg.SessionTTL, cfg.Debug)

	tokens, err := security.NewPlayerTokens(cfg.PlayerTokenSecret)
	if err != nil {
		log.Fatalf("Invalid PLAYER_TOKEN_SECRET: %v", err)
	}
	limiter := security.NewRateLimiter(cfg.AttemptRate, cfg.AttemptWindow)

	middleware := handlers.NewMiddleware(tokens, limiter, cfg.Debug)
	gameHandler := handlers.NewGameHandler(contentService, sessionService, resultService)

	handler := handlers.Logging(handlers.Routes(gameHandler, middleware))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go sessionService.RunSweeper(ctx, sweepInterval)
	go limiter.RunCleanup(ctx, limiterCleanupPeriod)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	sessionService.Shutdown(shutdownCtx)
	log.Println("Server stopped")
}
