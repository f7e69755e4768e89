package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/docx/registry"
)

// Config configures the ingest HTTP server.
type Config struct {
	Addr           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// DefaultConfig mirrors spec.md §6's INGEST_* defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:4010",
		MaxBodyBytes:   26214400,
		RequestTimeout: 30 * time.Second,
	}
}

// Server is the ingest HTTP surface: generic and typed ingest routes plus a
// health check and a doc-block preview page, wired to a tenant registry
// rather than one fixed control plane.
type Server struct {
	config   Config
	registry *registry.Registry
	logger   arbor.ILogger
	validate *validator.Validate
	server   *http.Server
}

// New constructs a Server. Call Start to run it; it blocks until Shutdown.
func New(config Config, reg *registry.Registry, logger arbor.ILogger) *Server {
	s := &Server{
		config:   config,
		registry: reg,
		logger:   logger,
		validate: validator.New(),
	}
	s.server = &http.Server{
		Addr:    config.Addr,
		Handler: s.withMiddleware(s.routes()),
	}
	return s
}

// Start runs the server; it blocks until the server stops or fails.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.Addr).Msg("docx ingest http server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ingest http server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the wired handler for testing without binding a socket.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ingest", s.handleGenericIngest)
	mux.HandleFunc("/ingest/csharp", s.handleCsharpIngest)
	mux.HandleFunc("/ingest/rustdoc", s.handleRustdocIngest)
	mux.HandleFunc("/preview/doc-block", s.handlePreviewDocBlock)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// boundBody wraps the request body with the configured max-bytes reader and
// attaches a per-request timeout context. The control-plane ingest calls do
// not take a context, so the deadline does not interrupt an ingest and no
// timeout response is produced.
func (s *Server) boundBody(w http.ResponseWriter, r *http.Request) (*http.Request, context.CancelFunc) {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

func (s *Server) resolve(solution string) (*registry.Handle, error) {
	return s.registry.GetOrInit(solution)
}
