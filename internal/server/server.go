// Package server serves the pondera dashboard: an HTML shell with the flow
// diagram, the weighting table and the grade calculator, plus the JSON API
// behind it.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/pondera/pkg/calculator"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/metrics"
	"github.com/matzehuels/pondera/pkg/pipeline"
	"github.com/matzehuels/pondera/pkg/render"
	"github.com/matzehuels/pondera/pkg/weights"
)

// Config wires a Server.
type Config struct {
	Runner *pipeline.Runner

	// Mode is the threshold used when the inclusive toggle is off.
	Mode flow.Mode

	// Selection is the default elective policy of the calculator.
	Selection calculator.Selection

	// Metrics is served at /metrics when set.
	Metrics *metrics.Registry

	Logger *log.Logger
}

// Server handles dashboard and API requests. The table is loaded once and
// shared read-only by all handlers.
type Server struct {
	runner    *pipeline.Runner
	table     *weights.Table
	mode      flow.Mode
	selection calculator.Selection
	metrics   *metrics.Registry
	logger    *log.Logger
	validate  *validator.Validate
	pages     *template.Template
	router    chi.Router
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil || cfg.Runner.Table == nil {
		return nil, errors.New("server: runner with a loaded table is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = cfg.Runner.Logger
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		runner:    cfg.Runner,
		table:     cfg.Runner.Table,
		mode:      cfg.Mode,
		selection: cfg.Selection,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		validate:  validator.New(),
		pages:     pages,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDashboard)
	for _, f := range render.Formats {
		r.Get("/diagram"+f.Ext(), s.handleDiagram)
	}
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/table", s.handleTable)
		r.Get("/branches", s.handleBranches)
		r.Get("/nodes", s.handleNodes)
		r.Get("/legend", s.handleLegend)
		r.Get("/usefulness", s.handleUsefulness)
		r.Post("/calculator", s.handleCalculator)
		r.Get("/version", s.handleVersion)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr, "rows", s.table.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
