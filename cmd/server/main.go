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

	"github.com/deepsocial/backend/internal/api"
	"github.com/deepsocial/backend/internal/archive"
	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/notifications"
	"github.com/deepsocial/backend/internal/provider"
	"github.com/deepsocial/backend/internal/scheduler"
	"github.com/deepsocial/backend/internal/search"
	"github.com/deepsocial/backend/internal/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting DeepSocial search backend")

	// Initialize persistence
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	// Initialize the scraping provider client
	providerClient := provider.NewClient(cfg.ApifyToken, cfg.ApifyBaseURL, cfg.SyncTimeout)

	// Completion hooks: notifications always, archival when a storage
	// account is configured
	hooks := []search.CompletionHook{notifications.NewService(cfg)}
	if cfg.StorageAccount != "" {
		archiver, err := archive.NewAzureArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize archive storage: %v", err)
		}
		hooks = append(hooks, archiver)
	}

	// Initialize the search service
	searchService := search.NewService(cfg, st, providerClient, hooks...)

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, st)

	// Start scheduler
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	apiServer := api.NewServer(cfg, searchService)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
