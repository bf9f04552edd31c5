// Package server exposes the teamtree pipeline over HTTP.
//
// The service proxies the Sagenex backend on behalf of the caller: every
// request's bearer token is forwarded to the backend, the tree is fetched
// fresh, laid out and returned as JSON or rendered artifacts. Errors are
// always a JSON object {"error": message, "code": code}.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/pipeline"
	"github.com/sagenex/teamtree/pkg/snapshot"
)

// Config holds configuration for the HTTP server.
type Config struct {
	Addr string
	// BackendURL is the Sagenex API base URL.
	BackendURL string
	// HTTPClient is used for backend calls. Defaults to the backend client's.
	HTTPClient *http.Client
	// Runner executes the pipeline. Defaults to an uncached runner.
	Runner *pipeline.Runner
	// Snapshots enables the snapshot routes when set.
	Snapshots snapshot.Store
	// Defaults are applied to every pipeline request before query overrides.
	Defaults pipeline.Options
	Logger   *log.Logger

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the teamtree HTTP service.
type Server struct {
	cfg     Config
	backend *backend.Client
	runner  *pipeline.Runner
	logger  *log.Logger
	handler http.Handler
}

// New creates a server. It does not start listening.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	var opts []backend.Option
	if cfg.HTTPClient != nil {
		opts = append(opts, backend.WithHTTPClient(cfg.HTTPClient))
	}
	client, err := backend.NewClient(cfg.BackendURL, opts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		backend: client,
		runner:  cfg.Runner,
		logger:  cfg.Logger,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Serve listens on cfg.Addr and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", s.cfg.Addr)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	s.logger.Info("starting server", "addr", ln.Addr().String(), "backend", s.backend.BaseURL())

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(errors.ErrCodeInternal, err, "server error")
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
