// Command server runs the HR extract transformation service
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/api"
	"github.com/hrmigrate/hrmigrate/pkg/config"
	"github.com/hrmigrate/hrmigrate/pkg/metadatastore"
	"github.com/hrmigrate/hrmigrate/pkg/pipeline"
	"github.com/hrmigrate/hrmigrate/pkg/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg.SetupLogging()

	log := logrus.WithField("component", "server")
	log.WithField("environment", cfg.Environment).Info("Starting hrmigrate server")

	// Use SQLite for configuration documents and validation history
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}
	store, err := metadatastore.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize SQLite storage: %v", err)
	}
	defer store.Close()
	log.WithField("path", cfg.DatabasePath).Info("Initialized SQLite storage")

	// Sessions and their janitor
	manager := session.NewManager(cfg.SessionTTL())
	janitor, err := session.NewJanitor(manager, cfg.SessionSweepSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize session janitor: %v", err)
	}
	janitor.Start()
	defer janitor.Stop()

	service := pipeline.NewService(store, pipeline.Options{
		ConfigDir:          cfg.ConfigDir,
		MaxHierarchyLevels: cfg.MaxHierarchyLevels,
		PreviewRows:        cfg.PreviewRows,
		UploadRoots:        cfg.UploadURLRoots,
	})

	server := api.NewServer(manager, service, cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutting down server")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("API server stopped")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
	}
	log.Info("Server stopped")
}
