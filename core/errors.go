package core

import (
	"errors"
	"fmt"
)

// ErrExtractionFailed is returned when every configured PDF reader has
// been exhausted without producing text. This is terminal for a
// pipeline run: the caller must report it to the user and must not
// issue any LLM calls for the document.
var ErrExtractionFailed = errors.New("text extraction failed: no reader produced text")

// ReadError indicates that a single PDF reader could not read the
// document (malformed, encrypted, or unsupported input). A ReadError
// from the primary reader triggers the fallback reader; it is only
// surfaced to the user when all readers fail.
type ReadError struct {
	// Reader is the name of the reader that failed (e.g., "ledongthuc", "mupdf")
	Reader string
	// Err is the underlying library error
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reader %s failed: %v", e.Reader, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError wraps a library error with the reader name.
func NewReadError(reader string, err error) *ReadError {
	return &ReadError{Reader: reader, Err: err}
}

// ProviderError indicates that a single LLM completion call failed
// (transport error, provider-side error, or timeout). During chunked
// analysis a ProviderError is absorbed: its message is recorded in
// place of the affected chunk's output and the batch continues.
type ProviderError struct {
	// Model is the model identifier used for the failed call
	Model string
	// Err is the underlying client error
	Err error
}

func (e *ProviderError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("LLM call failed (model %s): %v", e.Model, e.Err)
	}
	return fmt.Sprintf("LLM call failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps an LLM client error with the model name.
func NewProviderError(model string, err error) *ProviderError {
	return &ProviderError{Model: model, Err: err}
}

// ParseError indicates that post-processing of model output failed
// (currently: parsing the metrics table as CSV). This is not a
// pipeline fault; callers fall back to displaying the raw text.
type ParseError struct {
	// Format describes the expected format (e.g., "csv")
	Format string
	// Err is the underlying parse error
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output as %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps a parse failure with the expected format name.
func NewParseError(format string, err error) *ParseError {
	return &ParseError{Format: format, Err: err}
}

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingAuth         = "MISSING_AUTH"
	ErrCodeInvalidValue        = "INVALID_CONFIG_VALUE"
	ErrCodeCacheDir            = "CACHE_DIR_UNAVAILABLE"
	ErrCodeEnvFileMissing      = "ENV_FILE_MISSING"
	ErrCodeEndpointUnreachable = "ENDPOINT_UNREACHABLE"
)

// ErrMissingAuth returns an error for missing authentication credentials.
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "llm":
		action = "Set LLM_API_KEY (or GROQ_API_KEY) in your .env file"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrInvalidConfigValue returns an error for a configuration value that
// is present but unusable.
func ErrInvalidConfigValue(key, value, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid value %q for %s: %s", value, key, reason),
		Action:  fmt.Sprintf("Correct %s in your environment or presets file", key),
	}
}

// ErrEnvFileMissing returns an error for a missing .env file.
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Environment file %s not found", path),
		Action:  "Copy .env.example to .env and set your LLM credentials",
	}
}

// ErrEndpointUnreachable returns an error when the LLM endpoint cannot
// be reached during startup validation.
func ErrEndpointUnreachable(url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEndpointUnreachable,
		Message: fmt.Sprintf("LLM endpoint %s is unreachable: %s", url, reason),
		Action:  "Check LLM_BASE_URL and your network connection",
	}
}

// ErrCacheDirUnavailable returns an error when the cache directory
// cannot be created or written.
func ErrCacheDirUnavailable(dir string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCacheDir,
		Message: fmt.Sprintf("Cache directory %s is unavailable: %s", dir, reason),
		Action:  "Set CACHE_DIR to a writable directory or fix its permissions",
	}
}
