// Package main implements the entry point for the StudyGen API server,
// which generates educational study artifacts from topics via LLM
// providers and scores the output for quality.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run loads configuration, wires dependencies, and serves until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"providers", len(cfg.Providers),
		"persistence_enabled", cfg.Database.URL != "")

	ctx := context.Background()

	var db *appDB
	if cfg.Database.URL != "" {
		db, err = setupAppDatabase(cfg, appLogger)
		if err != nil {
			return fmt.Errorf("failed to set up database: %w", err)
		}
	} else {
		slog.Warn("no database configured, generation results will not be persisted")
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
