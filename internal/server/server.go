// Package server provides the HTTP API for Annai.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/diagram"
	"github.com/hyperjump/annai/internal/docs"
	"github.com/hyperjump/annai/internal/keyword"
	"github.com/hyperjump/annai/internal/qa"
	"github.com/hyperjump/annai/internal/session"
	"github.com/hyperjump/annai/internal/storage"
)

// Server is the HTTP server for the Annai API.
type Server struct {
	sessions *session.Manager
	engine   *qa.Engine
	docs     *docs.Generator
	diagrams *diagram.Generator
	keywords *keyword.Index
	storage  *storage.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	sessions *session.Manager,
	engine *qa.Engine,
	docGen *docs.Generator,
	diagrams *diagram.Generator,
	keywords *keyword.Index,
	store *storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		sessions: sessions,
		engine:   engine,
		docs:     docGen,
		diagrams: diagrams,
		keywords: keywords,
		storage:  store,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/repos", s.handleAnalyze)
	r.Get("/api/v1/repos", s.handleListRepos)
	r.Get("/api/v1/sessions/{id}", s.handleGetSession)
	r.Get("/api/v1/sessions/{id}/tree", s.handleTree)
	r.Get("/api/v1/sessions/{id}/classification", s.handleClassification)
	r.Get("/api/v1/sessions/{id}/diagram", s.handleDiagram)
	r.Post("/api/v1/sessions/{id}/docs", s.handleGenerateDocs)
	r.Post("/api/v1/sessions/{id}/ask", s.handleAsk)
	r.Post("/api/v1/sessions/{id}/search", s.handleSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
