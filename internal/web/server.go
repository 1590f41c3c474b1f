// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package web serves the browser UI: an upload form, the rendered result and
// a download action, each browser session owning one controller slot.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"csvflow/cli/internal/backend"
	"csvflow/cli/internal/config"
	"csvflow/cli/internal/session"
)

const (
	// DefaultIdleTTL drops browser sessions nobody has touched for this long.
	DefaultIdleTTL = 2 * time.Hour
	sweepInterval  = 5 * time.Minute
	shutdownGrace  = 15 * time.Second
)

// Options configures a Server.
type Options struct {
	Listen           string
	MaxUpload        int64
	TransformDefault string
	// RequestTimeout bounds each request; it should exceed the backend timeout.
	RequestTimeout time.Duration
	// IdleTTL of zero uses DefaultIdleTTL; a negative value keeps sessions forever.
	IdleTTL time.Duration
	// Metrics is created when nil.
	Metrics *Metrics
}

// Server is the web UI.
type Server struct {
	api              backend.API
	log              zerolog.Logger
	store            *Store
	metrics          *Metrics
	router           chi.Router
	listen           string
	maxUpload        int64
	transformDefault string
}

// New wires the router. api is shared by every session.
func New(api backend.API, log zerolog.Logger, opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = config.DefaultListen
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = config.DefaultMaxUpload
	}
	if opts.TransformDefault == "" {
		opts.TransformDefault = config.DefaultTransformOp
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.IdleTTL == 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	s := &Server{
		api:              api,
		log:              log,
		store:            NewStore(func() *session.Session { return session.New(api) }, opts.IdleTTL),
		metrics:          opts.Metrics,
		listen:           opts.Listen,
		maxUpload:        opts.MaxUpload,
		transformDefault: opts.TransformDefault,
	}
	s.metrics.trackSessions(s.store.Len)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/", s.handleIndex)
	r.Post("/process", s.handleProcess)
	r.Post("/download", s.handleDownload)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.log.WithContext(context.Background()) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("csvflow web UI started")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				if n := s.store.Sweep(); n > 0 {
					s.log.Debug().Int("sessions", n).Msg("dropped idle sessions")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("graceful shutdown error")
			return err
		}
		s.log.Info().Msg("stopped")
		return nil
	})

	return g.Wait()
}
