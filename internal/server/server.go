package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jvoss/taskpilot/internal/instrumentation"
	"github.com/jvoss/taskpilot/internal/router"
)

const (
	// DefaultAddr is the default address for the API server.
	DefaultAddr = ":8080"

	// DefaultReadHeaderTimeout bounds how long a client may take to send
	// request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds the full request lifetime, including the
	// LLM extraction and Google API calls behind /tasks.
	DefaultWriteTimeout = 120 * time.Second

	// DefaultIdleTimeout is how long keep-alive connections are held open.
	DefaultIdleTimeout = 60 * time.Second
)

// Config holds configuration for the API server.
type Config struct {
	// Addr is the address to bind to (e.g., ":8080").
	Addr string

	// AllowedOrigin is the CORS origin allowed to call the API.
	// Empty means "*".
	AllowedOrigin string

	// ServerContext owns credentials and Google API clients.
	ServerContext *ServerContext

	// Router dispatches tasks. Usually a *router.Router.
	Router TaskRouter

	// Logger receives request and authorization logs. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// Metrics records HTTP and OAuth metrics. Optional.
	Metrics *instrumentation.Metrics
}

// Server is the HTTP front of the task router: one routing endpoint plus the
// browser-based Google authorization flow and health endpoints.
type Server struct {
	addr          string
	allowedOrigin string
	sc            *ServerContext
	router        TaskRouter
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
	health        *HealthChecker
	httpServer    *http.Server
}

// New creates an API server from the given configuration.
func New(config Config) (*Server, error) {
	if config.ServerContext == nil {
		return nil, fmt.Errorf("server context is required")
	}
	if config.Router == nil {
		return nil, fmt.Errorf("router is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	origin := config.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:          addr,
		allowedOrigin: origin,
		sc:            config.ServerContext,
		router:        config.Router,
		logger:        logger,
		metrics:       config.Metrics,
		health:        NewHealthChecker(config.ServerContext),
	}
	return s, nil
}

// Handler builds the server's full route table. Exposed so tests can drive
// the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /tasks", s.handleTasks)
	mux.HandleFunc("GET /authorize", s.handleAuthorize)
	mux.HandleFunc("GET /oauth2callback", s.handleOAuthCallback)
	mux.HandleFunc("GET /auth/status", s.handleAuthStatus)

	s.health.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	handler = s.withObservability(handler)
	handler = withCORS(handler, s.allowedOrigin)
	return handler
}

// Start runs the server until it fails or Shutdown is called. Blocking.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting api server", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new requests and drains in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.addr
}

// statusSpanAttrs converts an envelope outcome into span attributes.
func statusSpanAttrs(env router.Envelope) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(instrumentation.SpanAttrStatus, string(env.Status)),
	}
	if env.Parsed != nil {
		attrs = append(attrs, attribute.String(instrumentation.SpanAttrAction, string(env.Parsed.Action)))
	}
	return attrs
}

// errForEnvelope produces the error recorded on a span for an error envelope.
func errForEnvelope(env router.Envelope) error {
	if env.Message != "" {
		return errors.New(env.Message)
	}
	return errors.New("task execution failed")
}
