package validation

import (
	"fmt"
	"os"
	"strconv"

	"finreport_backend/core"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to provide comprehensive
// configuration checking before the pipeline starts.
type ConfigValidator struct {
	envPath string // Path to .env file (default: ".env")
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile validates that the .env file exists.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Configuration file not found. Copy .env.example to .env and configure your LLM credentials.",
			Error:   core.ErrEnvFileMissing(v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckLLMCredentials validates that an LLM API key is configured via
// LLM_API_KEY or GROQ_API_KEY.
func (v *ConfigValidator) CheckLLMCredentials() ValidationResult {
	if os.Getenv("LLM_API_KEY") == "" && os.Getenv("GROQ_API_KEY") == "" {
		return ValidationResult{
			Valid:   false,
			Message: "LLM API key required. Set LLM_API_KEY or GROQ_API_KEY",
			Error:   core.ErrMissingAuth("llm"),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "LLM credentials configured",
	}
}

// CheckBaseURL validates the LLM_BASE_URL environment variable. An
// unset value is valid; the built-in default endpoint is used.
func (v *ConfigValidator) CheckBaseURL() ValidationResult {
	baseURL := core.GetEnvOrDefault("LLM_BASE_URL", core.DefaultLLMBaseURL)

	if err := ValidateBaseURL(baseURL); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Invalid LLM base URL: " + baseURL,
			Error:   core.ErrInvalidConfigValue("LLM_BASE_URL", baseURL, err.Error()),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "LLM endpoint URL valid",
	}
}

// CheckPipelineParameters validates the truncation and chunking settings.
func (v *ConfigValidator) CheckPipelineParameters() ValidationResult {
	strategy := core.GetEnvOrDefault("TRUNCATE_STRATEGY", core.StrategyHeadTail)
	if strategy != core.StrategyHardCutoff && strategy != core.StrategyHeadTail {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Unknown truncation strategy %q", strategy),
			Error: core.ErrInvalidConfigValue("TRUNCATE_STRATEGY", strategy,
				fmt.Sprintf("must be %q or %q", core.StrategyHardCutoff, core.StrategyHeadTail)),
		}
	}

	chunkWords := core.ParseIntEnv("CHUNK_WORDS", core.DefaultChunkWords)
	if chunkWords <= 0 {
		return ValidationResult{
			Valid:   false,
			Message: "Chunk size must be positive",
			Error:   core.ErrInvalidConfigValue("CHUNK_WORDS", strconv.Itoa(chunkWords), "must be positive"),
		}
	}

	truncateChars := core.ParseIntEnv("TRUNCATE_MAX_CHARS", core.DefaultTruncateChars)
	if truncateChars <= 0 {
		return ValidationResult{
			Valid:   false,
			Message: "Truncation budget must be positive",
			Error:   core.ErrInvalidConfigValue("TRUNCATE_MAX_CHARS", strconv.Itoa(truncateChars), "must be positive"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: fmt.Sprintf("Pipeline parameters valid (%s, %d words/chunk)", strategy, chunkWords),
	}
}

// CheckCacheDir validates that the cache directory is writable,
// creating it if it does not exist.
func (v *ConfigValidator) CheckCacheDir() ValidationResult {
	dir := core.GetEnvOrDefault("CACHE_DIR", "./data")

	if err := CheckDirWritable(dir); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Cache directory is not writable: " + dir,
			Error:   core.ErrCacheDirUnavailable(dir, err.Error()),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Cache directory writable",
	}
}

// ValidateAll runs all configuration checks and returns all results.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckEnvFile(),
		v.CheckLLMCredentials(),
		v.CheckBaseURL(),
		v.CheckPipelineParameters(),
		v.CheckCacheDir(),
	}
}

// ValidateRequired runs the required configuration checks and returns
// the first failure, or nil if all pass. The .env file itself is not
// required; credentials may come from the process environment.
func (v *ConfigValidator) ValidateRequired() error {
	if result := v.CheckLLMCredentials(); !result.Valid {
		return result.Error
	}
	if result := v.CheckBaseURL(); !result.Valid {
		return result.Error
	}
	if result := v.CheckPipelineParameters(); !result.Valid {
		return result.Error
	}
	if result := v.CheckCacheDir(); !result.Valid {
		return result.Error
	}
	return nil
}

// IsValid returns true if all required configuration is valid.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}
