package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/studygen/studygen-api/internal/api"
	apiMiddleware "github.com/studygen/studygen-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.config.Auth, app.jwtService, app.keyVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	generateHandler := api.NewGenerateHandler(app.orchestrator, app.config.Server.RequestTimeout)
	healthHandler := api.NewHealthHandler(app.healthTable)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoint (public)
		r.Post("/auth/token", authHandler.Token)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/generate", generateHandler.Generate)

			if app.resultStore != nil {
				resultHandler := api.NewResultHandler(app.resultStore)
				r.Get("/results", resultHandler.ListResults)
				r.Get("/results/{id}", resultHandler.GetResult)
			}
		})
	})

	// Health check endpoint
	r.Get("/healthz", healthHandler.Healthz)

	return r
}
