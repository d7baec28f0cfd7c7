// server.go implements the Server organism that wires together the
// HTTP surface: the analyze API, health and stats endpoints, the
// embedded single-page UI, and the middleware stack.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"finreport_backend/metrics"
	"finreport_backend/webui/static"
)

// Server is the main HTTP server organism.
// It wires together:
//   - AnalyzeHandler for the pipeline endpoint
//   - API for health and stats
//   - LoggingMiddleware for request logging with correlation IDs
//   - RateLimiter on the analyze endpoint
//   - TokenAuth (optional) on the API endpoints
//   - embedded static assets for the single-page UI
type Server struct {
	httpServer  *http.Server
	mux         *http.ServeMux
	config      ServerConfig
	logger      *zap.Logger
	analyze     *AnalyzeHandler
	api         *API
	rateLimiter *RateLimiter
	auth        *TokenAuth
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Port to listen on (default: 3000)
	Port int

	// Host to bind to (default: "localhost")
	Host string

	// ReadTimeout for HTTP requests (default: 60s; uploads can be slow)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses (default: 300s; a multi-chunk
	// analysis holds the response open while the LLM works)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string

	// AnalyzeConfig for the analyze handler
	AnalyzeConfig AnalyzeHandlerConfig

	// RateLimit settings for the analyze endpoint
	RateLimitMaxAttempts int
	RateLimitWindowMin   int
	RateLimitBlockMin    int
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:                 3000,
		Host:                 "localhost",
		ReadTimeout:          60 * time.Second,
		WriteTimeout:         300 * time.Second,
		IdleTimeout:          120 * time.Second,
		ShutdownTimeout:      30 * time.Second,
		LogSkipPaths:         []string{"/api/health"},
		AnalyzeConfig:        DefaultAnalyzeHandlerConfig(),
		RateLimitMaxAttempts: 30,
		RateLimitWindowMin:   1,
		RateLimitBlockMin:    5,
	}
}

// NewServer creates a Server with the given configuration.
// auth may be nil for an unauthenticated server; cache may be nil when
// the service runs without a cache.
func NewServer(
	config ServerConfig,
	runner Runner,
	collector metrics.Collector,
	cache CacheReporter,
	auth *TokenAuth,
	logger *zap.Logger,
) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if collector == nil {
		return nil, fmt.Errorf("metrics collector is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	server := &Server{
		mux:     mux,
		config:  config,
		logger:  logger,
		analyze: NewAnalyzeHandler(config.AnalyzeConfig, runner, collector, logger),
		api:     NewAPI(collector, cache),
		rateLimiter: NewRateLimiter(
			config.RateLimitMaxAttempts,
			config.RateLimitWindowMin,
			config.RateLimitBlockMin,
		),
		auth: auth,
	}
	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	loggingMw := NewLoggingMiddleware(LoggingMiddlewareConfig{
		Logger:    logger,
		SkipPaths: config.LogSkipPaths,
	})

	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMw.Handler(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("Web server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", auth != nil),
	)

	return server, nil
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no auth required)
	s.mux.HandleFunc("/api/health", s.api.HandleHealth)

	// Protected API endpoints
	s.mux.Handle("/api/analyze", s.auth.Middleware(s.rateLimiter.Middleware(s.analyze)))
	s.mux.Handle("/api/stats", s.auth.Middleware(http.HandlerFunc(s.api.HandleStats)))

	// Single-page UI
	s.mux.HandleFunc("/", s.handleRoot)
}

// handleRoot serves the embedded single-page UI at the exact root path.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := static.ReadFile("index.html")
	if err != nil {
		http.Error(w, "UI assets missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// Start begins listening for HTTP requests and starts the rate
// limiter's cleanup ticker. This method blocks until the server is
// shut down.
func (s *Server) Start(ctx context.Context) error {
	s.rateLimiter.StartCleanupTicker(ctx, 5*time.Minute)

	s.logger.Info("Web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting up to
// ShutdownTimeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Web server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the address the server is configured to listen on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root handler including middleware. Intended for
// tests with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
