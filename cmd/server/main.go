package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pulsegram/backend/internal/router"
	"github.com/pulsegram/backend/pkg/config"
	"github.com/pulsegram/backend/pkg/firebase"
	"github.com/pulsegram/backend/pkg/logger"
	"github.com/pulsegram/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.InitFromEnv("LOG_LEVEL")

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		logger.Log.Errorf("Failed to initialize databases: %v", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Log.Errorf("Failed to initialize Firebase: %v", err)
		os.Exit(1)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	scheduler := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp.AuthClient)

	// Validator
	e.Validator = validators.NewValidator()

	// Start background jobs
	if err := scheduler.Start(ctx); err != nil {
		logger.Log.Errorf("Failed to start background jobs: %v", err)
		os.Exit(1)
	}

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			logger.Log.Infof("Server stopped: %v", err)
		}
	}()

	// Wait for termination and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server shutdown failed: %v", err)
	}
}
