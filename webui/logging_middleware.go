// logging_middleware.go implements the request-logging molecule. Every
// request gets a correlation ID, and method, path, status, duration, and
// client address are logged through zap.
package webui

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RequestIDHeader carries the correlation ID back to the client.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs all HTTP requests with status code and latency.
//
// It composes:
//   - responseWriterWrapper (to capture status code and response size)
//   - GenerateCorrelationID for request tracing
//   - zap for structured output
//
// Thread-safe for concurrent HTTP requests.
type LoggingMiddleware struct {
	logger    *zap.Logger
	skipPaths map[string]bool
}

// LoggingMiddlewareConfig holds configuration for the LoggingMiddleware.
type LoggingMiddlewareConfig struct {
	// Logger for request logging (default: zap.NewNop)
	Logger *zap.Logger

	// SkipPaths are paths to skip logging (e.g., health checks)
	SkipPaths []string
}

// NewLoggingMiddleware creates a LoggingMiddleware with the given configuration.
func NewLoggingMiddleware(config LoggingMiddlewareConfig) *LoggingMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &LoggingMiddleware{logger: logger, skipPaths: skipPaths}
}

// Handler wraps an http.Handler with correlation IDs and request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		correlationID := GenerateCorrelationID()
		w.Header().Set(RequestIDHeader, correlationID)

		start := time.Now()
		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default if not explicitly set
		}

		next.ServeHTTP(wrapped, r)

		m.logger.Info("HTTP request",
			zap.String("correlation_id", correlationID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("bytes", wrapped.bytesWritten),
			zap.String("remote_addr", getClientIP(r)),
		)
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
// and response size.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// WriteHeader captures the status code.
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write captures the bytes written and ensures the header is written.
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying writer supports it.
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// getClientIP extracts the client IP, preferring X-Forwarded-For from
// a reverse proxy over the socket address.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
