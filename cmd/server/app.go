package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/events"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/health"
	"github.com/studygen/studygen-api/internal/orchestrator"
	"github.com/studygen/studygen-api/internal/platform/gemini"
	"github.com/studygen/studygen-api/internal/platform/openai"
	"github.com/studygen/studygen-api/internal/platform/postgres"
	"github.com/studygen/studygen-api/internal/provider"
	"github.com/studygen/studygen-api/internal/quality"
	"github.com/studygen/studygen-api/internal/service/auth"
	"github.com/studygen/studygen-api/internal/store"
	"github.com/studygen/studygen-api/internal/template"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *appDB

	templates   *template.Registry
	providers   []generation.Provider
	healthTable *provider.Table
	router      *provider.Router
	assessor    *quality.Assessor

	jwtService  auth.JWTService
	keyVerifier auth.KeyVerifier

	resultStore  store.ResultStore
	eventEmitter events.EventEmitter
	orchestrator *orchestrator.Service

	prober *health.Prober
}

// newApplication creates a new application instance with all dependencies
// initialized. The db may be nil when no persistence is configured.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *appDB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.keyVerifier = auth.NewBcryptVerifier()
	logger.Info("authentication service initialized",
		"token_expiry", cfg.Auth.TokenExpiry,
		"clients", len(cfg.Auth.Clients))

	app.templates, err = template.NewRegistry(cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	app.providers, err = buildProviders(ctx, cfg.Providers, logger)
	if err != nil {
		return nil, err
	}
	app.healthTable = provider.NewTable(app.providers)
	app.router = provider.NewRouter(
		app.providers,
		app.healthTable,
		cfg.Generation.RateLimitBackoffCap,
		logger,
	)
	logger.Info("provider router initialized", "providers", len(app.providers))

	app.assessor, err = quality.NewAssessor(cfg.Quality, quality.DefaultDimensions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize quality assessor: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	if db != nil {
		app.resultStore = postgres.NewPostgresResultStore(db.conn, logger)
		emitter.RegisterHandler(events.NewStoreHandler(app.resultStore, logger))
		logger.Info("result persistence enabled")
	}
	app.eventEmitter = emitter

	app.orchestrator = orchestrator.NewService(
		app.templates,
		app.router,
		app.assessor,
		app.eventEmitter,
		logger,
	)

	if cfg.Health.Enabled {
		app.prober = health.NewProber(app.providers, app.healthTable, cfg.Health, logger)
		app.prober.Start()
		logger.Info("provider health prober started", "interval", cfg.Health.Interval)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// buildProviders constructs one adapter per configured provider.
func buildProviders(
	ctx context.Context,
	configs []config.ProviderConfig,
	logger *slog.Logger,
) ([]generation.Provider, error) {
	providers := make([]generation.Provider, 0, len(configs))
	for _, pc := range configs {
		switch pc.Kind {
		case "gemini":
			p, err := gemini.New(ctx, pc, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize gemini provider %q: %w", pc.ID, err)
			}
			providers = append(providers, p)
		case "openai":
			p, err := openai.New(pc, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize openai provider %q: %w", pc.ID, err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown provider kind %q for provider %q", pc.Kind, pc.ID)
		}
	}
	return providers, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.prober != nil {
		app.prober.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
}
