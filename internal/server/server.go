// Package server exposes the global warming analyzer as an html dashboard and a json api.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/internal/config"
	"github.com/aouyang1/go-warming/internal/observability"
	"github.com/jonboulle/clockwork"
)

// MaxHorizon caps the forecast horizon a request may ask for
const MaxHorizon = 200

// Options configures the server
type Options struct {
	Addr           string
	Horizon        int
	PreviewRows    int
	UploadTTL      time.Duration
	UploadCapacity int
	MaxUploadBytes int64
}

// OptionsFromConfig extracts the server options from the service configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:           cfg.HTTPAddr,
		Horizon:        cfg.ForecastHorizon,
		PreviewRows:    cfg.PreviewRows,
		UploadTTL:      cfg.UploadTTL,
		UploadCapacity: cfg.UploadCapacity,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
}

type pageHandler func(r *http.Request) (any, error)

// Server serves the dashboard pages, the json api, health checks and metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock

	opt      Options
	analyzer *warming.Analyzer
	uploads  *uploadStore
	pages    map[Page]pageHandler
	views    *views
	draining atomic.Bool
}

// NewServer wires every route. It panics if a page has no handler or template.
func NewServer(opt Options, a *warming.Analyzer, m *observability.Metrics, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opt.Addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:   logger,
		metrics:  m,
		clock:    clock,
		opt:      opt,
		analyzer: a,
		uploads:  newUploadStore(clock, opt.UploadTTL, opt.UploadCapacity, m),
		views:    newViews(),
	}
	s.pages = map[Page]pageHandler{
		PageHome:           s.homePage,
		PageScenario:       s.scenarioPage,
		PageVisualizations: s.visualizationsPage,
		PageForecast:       s.forecastPage,
		PageUpload:         s.uploadPage,
		PageReports:        s.reportsPage,
		PageAbout:          s.aboutPage,
	}
	for _, p := range Pages() {
		if _, exists := s.pages[p]; !exists {
			panic(fmt.Errorf("%s, %w", p, ErrUnhandledPage))
		}
		if !s.views.has(p) {
			panic(fmt.Errorf("%s template, %w", p, ErrUnhandledPage))
		}
	}

	mux.Handle("GET /{$}", s.instrument(PageHome.String(), s.servePage(PageHome)))
	for _, p := range Pages() {
		mux.Handle("GET "+p.Path(), s.instrument(p.String(), s.servePage(p)))
	}
	mux.Handle("GET /pages/{page}", s.instrument("unknown_page", s.handleUnknownPage))
	mux.Handle("POST /pages/upload", s.instrument("upload_form", s.handleUploadForm))

	mux.Handle("GET /api/dataset", s.instrument("api_dataset", s.handleDataset))
	mux.Handle("GET /api/scenario", s.instrument("api_scenario", s.handleScenario))
	mux.Handle("GET /api/forecast", s.instrument("api_forecast", s.handleForecast))
	mux.Handle("POST /api/uploads", s.instrument("api_uploads", s.handleUpload))
	mux.Handle("GET /api/uploads/{id}", s.instrument("api_upload", s.handleUploadSummary))
	mux.Handle("GET /api/uploads/{id}/correlation", s.instrument("api_upload_correlation", s.handleUploadCorrelation))
	mux.Handle("GET /api/uploads/{id}/histogram", s.instrument("api_upload_histogram", s.handleUploadHistogram))
	mux.Handle("GET /api/uploads/{id}/scatter", s.instrument("api_upload_scatter", s.handleUploadScatter))
	mux.Handle("GET /export/{format}", s.instrument("export", s.handleExport))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", m.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.draining.Load() || s.analyzer == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
