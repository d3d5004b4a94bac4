package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/shelfsense/internal/config"
	"github.com/dukerupert/shelfsense/internal/database"
	"github.com/dukerupert/shelfsense/internal/email"
	"github.com/dukerupert/shelfsense/internal/logging"
	"github.com/dukerupert/shelfsense/internal/recipes"
	"github.com/dukerupert/shelfsense/internal/server"
	"github.com/dukerupert/shelfsense/internal/voice"
)

func main() {
	configPath := os.Getenv("SHELFSENSE_CONFIG")
	if configPath == "" {
		configPath = "shelfsense.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	interpreter := voice.NewInterpreter(voice.InterpreterConfig{
		APIKey:         cfg.Interpreter.APIKey,
		BaseURL:        cfg.Interpreter.BaseURL,
		Model:          cfg.Interpreter.Model,
		TimeoutSeconds: cfg.Interpreter.TimeoutSeconds,
	})
	if !interpreter.Configured() {
		logger.Warn("voice interpreter not configured, transcript endpoint disabled")
	}

	recipeSvc := recipes.NewService(recipes.Config{
		APIKey:  cfg.Recipes.APIKey,
		BaseURL: cfg.Recipes.BaseURL,
	})
	if !recipeSvc.Configured() {
		logger.Warn("recipe service not configured, suggestions endpoint disabled")
	}

	emailClient := email.NewClient(cfg.Email.PostmarkToken, cfg.Email.FromEmail)
	if !emailClient.Configured() {
		logger.Warn("email not configured, expiration reminders disabled")
	}

	sweepInterval := time.Duration(cfg.Sweep.IntervalHours) * time.Hour
	srv := server.New(db, interpreter, recipeSvc, emailClient, sweepInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if emailClient.Configured() {
		srv.SweepScheduler().Start(ctx)
		defer srv.SweepScheduler().Stop()
	}

	// Periodically drop expired rate-limit entries
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("ShelfSense running at http://localhost%s\n", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
