// internal/server/server.go
// Package server exposes the loan pipeline over HTTP. Business endpoints sit
// on the API port; prometheus metrics and pprof sit on a separate admin port.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-orchestrator/internal/common/config"
	stderrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/crm"
	"loan-orchestrator/internal/pipeline"
	"loan-orchestrator/internal/sink"
	"loan-orchestrator/internal/steps/underwrite"
)

// Deps bundles everything the HTTP layer calls into. Construction happens in
// cmd; the server only routes.
type Deps struct {
	Config       *config.Config
	Logger       logger.Logger
	Orchestrator *pipeline.Orchestrator
	Store        crm.Store
	Kyc          pipeline.KycChecker
	Underwriter  pipeline.Underwriter
	UWConfig     *underwrite.Config
	Audit        sink.AuditSink
	Metrics      sink.MetricsSink
}

type Server struct {
	cfg    *config.Config
	logger logger.Logger
	errs   *stderrors.ErrorHandler
	orch   *pipeline.Orchestrator
	store  crm.Store
	kyc    pipeline.KycChecker
	uw     pipeline.Underwriter
	uwCfg  *underwrite.Config

	audit   sink.AuditSink
	metrics sink.MetricsSink

	router chi.Router
	http   *http.Server
	admin  *http.Server
}

func New(deps Deps) *Server {
	s := &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		errs:    stderrors.NewErrorHandler(deps.Logger),
		orch:    deps.Orchestrator,
		store:   deps.Store,
		kyc:     deps.Kyc,
		uw:      deps.Underwriter,
		uwCfg:   deps.UWConfig,
		audit:   deps.Audit,
		metrics: deps.Metrics,
	}
	if s.uwCfg == nil {
		s.uwCfg = underwrite.DefaultConfig()
	}

	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	if s.cfg.Server.RateLimit.Enabled {
		limiter := newRateLimiter(
			s.cfg.Server.RateLimit.Capacity,
			time.Duration(s.cfg.Server.RateLimit.RefillMS)*time.Millisecond,
		)
		r.Use(rateLimitMiddleware(limiter))
	}

	r.Get("/health", s.handleHealth)

	r.Post("/orchestrate", s.handleOrchestrate)
	r.Post("/apply", s.handleApply)
	r.Post("/quote", s.handleQuote)

	r.Get("/kyc/{customerID}", s.handleKyc)
	r.Get("/crm/{customerID}", s.handleGetProfile)
	r.Post("/crm/update", s.handleUpdateProfile)
	r.Get("/db", s.handleListIDs)
	r.Get("/credit/{customerID}", s.handleCredit)
	r.Get("/status/{customerID}", s.handleStatus)

	r.Get("/pdf/{filename}", s.handlePDF)

	r.Get("/audit", s.handleAudit)
	r.Get("/metrics/records", s.handleMetricsRecords)
	r.Post("/events", s.handleEvents)

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the API and admin listeners. It blocks until one of them fails.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		s.logger.Info("api server listening", map[string]interface{}{"port": s.cfg.Server.Port})
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.admin = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.AdminPort),
		Handler: adminHandler(),
	}
	go func() {
		s.logger.Info("admin server listening", map[string]interface{}{"port": s.cfg.Server.AdminPort})
		if err := s.admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return <-errCh
}

// Shutdown drains both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if s.admin != nil {
		if err := s.admin.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// adminHandler serves prometheus metrics and pprof away from the public API.
func adminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}
