// Package api exposes the favorites, settings, file cache and feed over a
// local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mmcdole/akiba/internal/favorites"
	"github.com/mmcdole/akiba/internal/filecache"
	"github.com/mmcdole/akiba/internal/service"
	"github.com/mmcdole/akiba/internal/settings"
)

const shutdownTimeout = 30 * time.Second

// Deps are the collaborators the handlers operate on
type Deps struct {
	Ledger   *favorites.Ledger
	Files    *filecache.Manager
	Settings *settings.Store
	Feed     *service.FeedService
}

// Server is the local HTTP API
type Server struct {
	router *chi.Mux
	deps   Deps
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a server with all routes registered
func NewServer(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", s.handleListFavorites)
		r.Get("/{kind}/records", s.handleFavoriteRecords)
		r.Post("/{kind}/{id}", s.handleToggleFavorite)
	})

	r.Get("/settings", s.handleGetSettings)
	r.Patch("/settings", s.handlePatchSettings)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/size", s.handleCacheSize)
		r.Delete("/", s.handleClearCache)
		r.Get("/resolve", s.handleResolve)
	})

	r.Get("/feed", s.handleFeed)
	r.Post("/feed/pull", s.handlePullFeed)
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", "addr", addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("api server stopping")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("api request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
