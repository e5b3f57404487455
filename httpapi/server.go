package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/isdmx/questbox/config"
	"github.com/isdmx/questbox/engine"
	"github.com/isdmx/questbox/history"
	"github.com/isdmx/questbox/protocol"
	"github.com/isdmx/questbox/validator"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	// requestOverhead is allowed on top of the source size cap for the JSON
	// envelope and context variables.
	requestOverhead = 64 * 1024
)

// Executor is the engine surface the API needs.
type Executor interface {
	ExecuteUserCode(ctx context.Context, req engine.Request) (protocol.Outcome, error)
	Check(code string) validator.Result
	Stats() engine.Stats
}

// SubmissionLister lists recorded submissions.
type SubmissionLister interface {
	Recent(ctx context.Context, limit int) ([]history.Submission, error)
}

// Server is the REST front end.
type Server struct {
	cfg         *config.Config
	logger      *zap.Logger
	executor    Executor
	submissions SubmissionLister
	mcp         http.Handler
	router      chi.Router
	http        *http.Server
}

// Option defines a functional option for Server
type Option func(*Server)

// WithMCPHandler mounts an MCP streamable HTTP handler at /mcp
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// New creates a Server. submissions may be nil.
func New(cfg *config.Config, logger *zap.Logger, executor Executor, submissions SubmissionLister, opts ...Option) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger.Named("http"),
		executor:    executor,
		submissions: submissions,
		router:      chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(jsonContentType)
		r.Use(middleware.RequestSize(int64(s.cfg.Validator.MaxSourceBytes) + requestOverhead))

		r.Post("/execute", s.handleExecute)
		r.Post("/validate", s.handleValidate)
		r.Get("/stats", s.handleStats)
		r.Get("/submissions", s.handleSubmissions)
	})

	if s.mcp != nil {
		r.Handle("/mcp", s.mcp)
	}
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured port. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("starting REST server", zap.String("addr", addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
