package validation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"finreport_backend/core"
)

// ConnectivityResult represents the result of a connectivity check.
type ConnectivityResult struct {
	Reachable  bool
	StatusCode int
	Message    string
	Latency    time.Duration
	Error      error
}

// ConnectivityChecker verifies that the LLM endpoint responds to HTTP
// requests before the pipeline accepts work.
type ConnectivityChecker struct {
	timeout time.Duration
}

// NewConnectivityChecker creates a ConnectivityChecker with a 10 second
// timeout.
func NewConnectivityChecker() *ConnectivityChecker {
	return &ConnectivityChecker{
		timeout: 10 * time.Second,
	}
}

// WithTimeout sets the timeout for connectivity checks.
func (c *ConnectivityChecker) WithTimeout(timeout time.Duration) *ConnectivityChecker {
	c.timeout = timeout
	return c
}

// CheckEndpoint tests whether an endpoint is reachable with an HTTP
// HEAD request. Any HTTP response, including 4xx, counts as reachable;
// the endpoint answering at all is what matters here, auth failures
// surface later with a clear provider error.
func (c *ConnectivityChecker) CheckEndpoint(baseURL string) ConnectivityResult {
	if err := ValidateBaseURL(baseURL); err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Invalid URL format",
			Error:     core.ErrInvalidConfigValue("LLM_BASE_URL", baseURL, err.Error()),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Failed to create request",
			Error:     core.ErrEndpointUnreachable(baseURL, err.Error()),
		}
	}

	startTime := time.Now()
	resp, err := (&http.Client{Timeout: c.timeout}).Do(req)
	latency := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ConnectivityResult{
				Reachable: false,
				Message:   "Connection timed out",
				Latency:   latency,
				Error:     core.ErrEndpointUnreachable(baseURL, fmt.Sprintf("connection timed out after %v", c.timeout)),
			}
		}
		return ConnectivityResult{
			Reachable: false,
			Message:   "Connection failed",
			Latency:   latency,
			Error:     core.ErrEndpointUnreachable(baseURL, err.Error()),
		}
	}
	defer resp.Body.Close()

	return ConnectivityResult{
		Reachable:  true,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Endpoint reachable (status: %d)", resp.StatusCode),
		Latency:    latency,
	}
}

// CheckLLMEndpoint checks connectivity to the configured LLM endpoint
// using the LLM_BASE_URL environment variable or the built-in default.
func (c *ConnectivityChecker) CheckLLMEndpoint() ConnectivityResult {
	return c.CheckEndpoint(core.GetEnvOrDefault("LLM_BASE_URL", core.DefaultLLMBaseURL))
}

// IsReachable is a convenience wrapper returning only the boolean result.
func (c *ConnectivityChecker) IsReachable(baseURL string) bool {
	return c.CheckEndpoint(baseURL).Reachable
}
