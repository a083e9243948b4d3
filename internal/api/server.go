// Copyright (c) 2026 Toonhive. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/toonhive/internal/core/chapter"
	"github.com/taibuivan/toonhive/internal/core/role"
	"github.com/taibuivan/toonhive/internal/core/webtoon"
	"github.com/taibuivan/toonhive/internal/ingest"
	"github.com/taibuivan/toonhive/internal/library"
	"github.com/taibuivan/toonhive/internal/notify"
	"github.com/taibuivan/toonhive/internal/platform/config"
	"github.com/taibuivan/toonhive/internal/platform/constants"
	"github.com/taibuivan/toonhive/internal/platform/middleware"
	"github.com/taibuivan/toonhive/internal/users/auth"
	"github.com/taibuivan/toonhive/internal/users/profile"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (login, register, refresh).
	Auth *auth.Handler

	// Profile handles reader profiles and admin user management.
	Profile *profile.Handler

	// Webtoon handles the series catalogue.
	Webtoon *webtoon.Handler

	// Chapter handles chapter listing, the reader view, and navigation.
	Chapter *chapter.Handler

	// Ingest handles batched chapter publishing.
	Ingest *ingest.Handler

	// Role manages the access role registry.
	Role *role.Handler

	// Library manages reader favorites.
	Library *library.Handler

	// Notify manages new-chapter notifications.
	Notify *notify.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, roles middleware.RoleSource, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier, roles))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {

		// Standard routes run under the global request deadline.
		api.Group(func(std chi.Router) {
			std.Use(chimw.Timeout(constants.GlobalRequestTimeout))

			std.Mount("/auth", h.Auth.Routes())
			std.Mount("/profiles", h.Profile.Routes())
			std.Route("/chapters", h.Chapter.RegisterRoutes)
			std.Route("/roles", h.Role.RegisterRoutes)
			std.Route("/favorites", h.Library.RegisterRoutes)
			std.Route("/notifications", h.Notify.RegisterRoutes)
		})

		// The webtoons subtree hosts batch ingestion, which legitimately
		// runs for minutes. The catalogue routes keep the global deadline
		// through an inline group; the batch endpoint enforces its own.
		api.Route("/webtoons", func(wt chi.Router) {
			wt.Group(func(catalogue chi.Router) {
				catalogue.Use(chimw.Timeout(constants.GlobalRequestTimeout))
				h.Webtoon.RegisterRoutes(catalogue)
				h.Chapter.RegisterWebtoonRoutes(catalogue)
			})
			h.Ingest.RegisterWebtoonRoutes(wt)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:    ":" + cfg.ServerPort,
			Handler: r,
			// Read/WriteTimeout stay unset: archive uploads stream for
			// far longer than any sane global deadline, and every route
			// carries its own context timeout.
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
