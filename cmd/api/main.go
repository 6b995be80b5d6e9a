package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Makb000/opportunity-tracker/internal/config"
	"github.com/Makb000/opportunity-tracker/internal/http/handler"
	"github.com/Makb000/opportunity-tracker/internal/http/middleware"
	"github.com/Makb000/opportunity-tracker/internal/http/router"
	"github.com/Makb000/opportunity-tracker/internal/jobs"
	"github.com/Makb000/opportunity-tracker/internal/logger"
	"github.com/Makb000/opportunity-tracker/internal/service"
	"github.com/Makb000/opportunity-tracker/internal/store"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Initialize the document store; the store is constructed once and
	// injected into every handler, never accessed as global state
	documentStore, err := store.NewDocumentStore(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized",
		zap.String("mode", cfg.Storage.Mode),
		zap.String("container", documentStore.Container()),
		zap.String("blob", documentStore.Blob()),
	)

	// Initialize services
	datasetService := service.NewDatasetService(documentStore, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	datasetHandler := handler.NewDatasetHandler(datasetService, log)
	entityHandler := handler.NewEntityHandler(datasetService, log)
	healthHandler := handler.NewHealthHandler(datasetService, documentStore, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		rateLimiter,
		datasetHandler,
		entityHandler,
		healthHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Backup.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterBackupJob(scheduler, datasetService, &cfg.Backup, log); err != nil {
			log.Error("Failed to register backup job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with backup job",
				zap.String("cron_expr", cfg.Backup.CronExpr),
			)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
