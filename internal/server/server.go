// Package server exposes the converter and the password generator over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ginjaninja78/rcli/internal/config"
	"github.com/ginjaninja78/rcli/internal/csvparser"
	"github.com/ginjaninja78/rcli/internal/encoder"
	"github.com/ginjaninja78/rcli/internal/genpass"
	"github.com/ginjaninja78/rcli/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures a Server.
type Options struct {
	// Settings holds the address, limits and timeouts.
	Settings config.ServerSettings

	// CSV is applied to uploads unless the query string overrides it.
	CSV csvparser.Settings

	// Format is the output encoding used when the request names none.
	Format encoder.Format

	// Genpass supplies defaults for fields a generate request omits.
	Genpass genpass.Options

	// Generator draws passwords. Nil uses crypto/rand.
	Generator *genpass.Generator

	Logger *slog.Logger
}

// Server is the HTTP API started by `rcli serve`.
type Server struct {
	opts    Options
	router  *chi.Mux
	limiter *ipRateLimiter
	logger  *slog.Logger
}

// New creates a Server with its middleware and routes installed.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Generator == nil {
		opts.Generator = genpass.New(nil)
	}
	if opts.Format == 0 {
		opts.Format = encoder.JSON
	}
	if opts.Settings.MaxBodyBytes <= 0 {
		opts.Settings.MaxBodyBytes = 10 << 20
	}

	s := &Server{
		opts:    opts,
		router:  chi.NewRouter(),
		limiter: newIPRateLimiter(opts.Settings.RateLimit, opts.Settings.Burst),
		logger:  opts.Logger.With("component", "server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(s.limiter.middleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/genpass", s.handleGenpass)
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Settings.Addr)
	if err != nil {
		return types.NewIOError("listen on "+s.opts.Settings.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.opts.Settings.ReadTimeout,
		WriteTimeout: s.opts.Settings.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go s.limiter.cleanup(ctx, 10*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return types.NewIOError("serve", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	timeout := s.opts.Settings.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return types.NewIOError("shutdown", err)
	}

	s.logger.Info("server stopped")
	return nil
}
