// Package api serves the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                    liveness and version
//	GET  /v1/solvers                 registered solver names
//	POST /v1/layout                  lay out a request document, return changes
//	POST /v1/metrics                 score the diagram's current layout
//	GET  /v1/diagrams/{id}           load a stored diagram
//	POST /v1/diagrams/{id}/layout    lay out a stored diagram and commit the changes
//
// Both layout routes accept ?metrics=true to add a metrics report to the
// response. Request bodies above MaxBodyBytes are rejected with 413.
//
// Request and response bodies are the JSON documents of package io. Errors
// are returned as {"error": {"code": ..., "message": ...}} with the status
// given by errors.HTTPStatus.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ontolayout/pkg/pipeline"
	"github.com/matzehuels/ontolayout/pkg/store"
)

// Defaults for Server fields left zero.
const (
	DefaultTimeout      = time.Minute
	DefaultMaxBodyBytes = 32 << 20
	shutdownGrace       = 10 * time.Second
)

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	Runner *pipeline.Runner
	// Store holds diagrams for the /v1/diagrams routes. Nil disables them.
	Store store.Store
	// Defaults fills request options left unset, typically config.ApplyTo.
	Defaults     func(*pipeline.Options)
	Logger       *log.Logger
	Timeout      time.Duration
	MaxBodyBytes int64

	started time.Time
}

// New creates a server with defaults applied.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		Runner:       runner,
		Store:        st,
		Logger:       logger,
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		started:      time.Now(),
	}
}

// Handler returns the router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		if s.Timeout > 0 {
			r.Use(middleware.Timeout(s.Timeout))
		}
		r.Use(s.limitBody)
		r.Get("/solvers", s.solvers)
		r.Post("/layout", s.layout)
		r.Post("/metrics", s.metrics)
		r.Route("/diagrams/{id}", func(r chi.Router) {
			r.Get("/", s.getDiagram)
			r.Post("/layout", s.layoutDiagram)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
