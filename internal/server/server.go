// Package server exposes the traceability pipeline and document generation
// over HTTP.
//
// Routes:
//
//	POST /v1/graph     build, lay out and render a traceability graph
//	POST /v1/classify  categorize requirement sentences
//	POST /v1/detect    detect the system profile
//	POST /v1/generate  generate design and verification documents
//	GET  /healthz      liveness
//	GET  /version      build information
//	GET  /metrics      Prometheus metrics, when enabled
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reqtrace/pkg/artifacts"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/observability"
	"github.com/matzehuels/reqtrace/pkg/pipeline"
	"github.com/matzehuels/reqtrace/pkg/prompts"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

// Deps are the collaborators the handlers call. Runner is required.
type Deps struct {
	Runner *pipeline.Runner
	// Generator enables /v1/generate. Without it the route answers 501.
	Generator *artifacts.Generator
	// Database adds schema context to generated documents.
	Database   artifacts.Database
	Examples   prompts.Examples
	SampleSize int
	// Metrics enables /metrics and request instrumentation.
	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Options configures the listener.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

// Server serves the reqtrace API.
type Server struct {
	deps     Deps
	opts     Options
	detector *detect.Detector
	logger   *log.Logger
}

// New returns a Server. Zero options take the package defaults.
func New(deps Deps, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if deps.SampleSize <= 0 {
		deps.SampleSize = schema.DefaultSampleSize
	}
	deps.Examples = deps.Examples.WithDefaults()

	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := deps.Runner.Detector
	if d == nil {
		d = detect.New(nil)
	}
	return &Server{deps: deps, opts: opts, detector: d, logger: logger}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/graph", s.handleGraph)
		r.Post("/classify", s.handleClassify)
		r.Post("/detect", s.handleDetect)
		r.Post("/generate", s.handleGenerate)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
