package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/platform/postgres"
)

// appDB bundles the database handle so the application can treat
// persistence as optional.
type appDB struct {
	conn *sql.DB
}

// setupAppDatabase establishes a connection to the database, configures the
// connection pool, and applies pending schema migrations.
func setupAppDatabase(cfg *config.Config, logger *slog.Logger) (*appDB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.RunMigrations(db, logger); err != nil {
		return nil, err
	}

	logger.Info("database connection established")
	return &appDB{conn: db}, nil
}

// Close releases the underlying connection pool.
func (d *appDB) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
