// Package llm provides the completion capability used by the analysis
// pipeline: a thin client over OpenAI-compatible chat completion APIs
// (Groq, OpenAI, or any compatible endpoint).
package llm

import (
	"time"

	"finreport_backend/core"
)

// Params are the per-call model parameters for a completion request.
type Params struct {
	// Model is the model identifier (e.g., "openai/gpt-oss-20b")
	Model string

	// Temperature controls response randomness (0.0-1.0)
	Temperature float32

	// MaxTokens is the maximum number of completion tokens
	MaxTokens int
}

// Config holds configuration for the completion client.
type Config struct {
	// APIKey authenticates against the endpoint
	APIKey string

	// BaseURL is the OpenAI-compatible endpoint base URL.
	// Empty string uses the OpenAI default.
	BaseURL string

	// Timeout is the per-call timeout applied when the caller's context
	// carries no deadline of its own. Zero disables the client-side timeout.
	Timeout time.Duration

	// Params are the default model parameters for calls made with
	// zero-value Params.
	Params Params
}

// DefaultParams returns the default model parameters: the Groq-hosted
// model this service ships configured for, low temperature for
// deterministic financial analysis.
func DefaultParams() Params {
	return Params{
		Model:       core.DefaultModel,
		Temperature: core.DefaultTemperature,
		MaxTokens:   core.DefaultMaxTokens,
	}
}

// ConfigFromCore builds a client Config from the application configuration.
func ConfigFromCore(cfg *core.Config) Config {
	return Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Timeout: cfg.AITimeout,
		Params: Params{
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
			MaxTokens:   cfg.MaxTokens,
		},
	}
}
