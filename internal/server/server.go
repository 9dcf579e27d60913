// Package server exposes the graded bet pipeline over HTTP: cached bet
// reads, the diagnostic game listing, health, and metrics.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/cache"
	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
	"github.com/yourusername/gridiron-edge/internal/pipeline"
)

// Server wires handlers, the cache store, and the pipeline behind a chi
// router.
type Server struct {
	cfg      *config.Config
	store    *cache.Store
	pipeline *pipeline.Pipeline
	usage    *oddsapi.UsageTracker
	logger   *logrus.Logger
	http     *http.Server
}

// New creates a server with its dependencies
func New(cfg *config.Config, store *cache.Store, pipe *pipeline.Pipeline, usage *oddsapi.UsageTracker, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		pipeline: pipe,
		usage:    usage,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  s.allowOrigin,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/cfb/bets", s.handleCFBBets)
		r.Get("/nfl/props", s.handleNFLProps)
		r.Get("/college-games", s.handleCollegeGames)
		r.Get("/health", s.handleHealth)

		// Old dashboard builds still poll this path; keep it harmless.
		r.Get("/nfl-player-props", s.handleLegacyProps)
	})

	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}

// allowOrigin admits the configured origins plus any localhost origin, so
// local dashboard development works without config changes.
func (s *Server) allowOrigin(r *http.Request, origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.CORSOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1")
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"addr":        s.http.Addr,
		"environment": s.cfg.App.Environment,
	}).Info("HTTP server starting")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
