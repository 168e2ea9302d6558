package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"finlink/internal/shared/config"
	"finlink/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, base zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(base))
	r.Use(middleware.Logging)
	if cfg.Telemetry.Enabled {
		r.Use(middleware.Telemetry(cfg.Telemetry.ServiceName))
		r.Use(middleware.Tracing)
	}
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.TLS.Enabled {
		r.Use(middleware.HSTS)
		log.Info().Msg("TLS security middleware enabled (HSTS)")
	}

	// Health check
	r.Get("/health", deps.HealthHandler.HandleHealth)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.Auth(deps.JWT))

		deps.AccountHandler.Mount(r)
		deps.TransactionHandler.Mount(r)
	})

	return r
}
