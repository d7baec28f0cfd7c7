package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Truncation strategy names accepted in configuration.
const (
	// StrategyHardCutoff keeps the first maxChars characters of the text.
	StrategyHardCutoff = "cutoff"

	// StrategyHeadTail keeps the head and tail of the text with an
	// omission marker in between. This preserves both the opening
	// (typically a management summary) and the closing sections
	// (typically outlook and risk disclosures) of a financial report.
	StrategyHeadTail = "headtail"
)

// Config holds all configuration values for the analysis backend.
type Config struct {
	// LLM API Configuration
	LLMAPIKey   string  // API key for the OpenAI-compatible endpoint (required)
	LLMBaseURL  string  // Base URL (default: Groq's OpenAI-compatible endpoint)
	Model       string  // Model identifier
	Temperature float64 // Sampling temperature (0.0-1.0)
	MaxTokens   int     // Maximum completion tokens per call

	// Extraction Configuration
	MaxPages         int // Page limit for the primary reader (0 = all pages)
	MaxChars         int // Character budget for the primary reader
	FallbackMaxPages int // Page limit for the fallback reader (0 = all pages)
	FallbackMaxChars int // Character budget for the fallback reader

	// Truncation and Chunking Configuration
	TruncationStrategy string // "cutoff" or "headtail"
	TruncateChars      int    // Character budget applied after extraction
	ChunkWords         int    // Words per chunk sent to the model

	// Processing Configuration
	AITimeout   time.Duration // Per-call timeout for LLM requests
	MaxFileSize int64         // Maximum upload size in bytes

	// Cache Configuration
	CacheDir             string        // Directory for the cache database
	CacheTTL             time.Duration // Time-to-live for cache entries
	CacheCleanupInterval time.Duration // How often expired entries are purged

	// Web Server Configuration
	Host       string // Host to bind (default: localhost)
	Port       int    // Port to listen on
	WebUIToken string // Optional bearer token for API access (empty = open)

	// Rate Limiting Configuration
	RateLimitMaxAttempts int // Requests allowed per window before blocking
	RateLimitWindowMin   int // Window length in minutes
	RateLimitBlockMin    int // Block duration in minutes
}

// Default configuration values. The pipeline defaults mirror the
// analysis presets this service ships with: head/tail truncation,
// 3000-word chunks, and Groq's OpenAI-compatible endpoint.
const (
	DefaultLLMBaseURL  = "https://api.groq.com/openai/v1"
	DefaultModel       = "openai/gpt-oss-20b"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2000

	DefaultMaxChars      = 400000
	DefaultTruncateChars = 150000
	DefaultChunkWords    = 3000

	DefaultAITimeoutSeconds = 120
	DefaultMaxFileSize      = 50 * 1024 * 1024

	DefaultCacheTTLHours       = 24
	DefaultCacheCleanupMinutes = 60

	DefaultPort = 3000
	DefaultHost = "localhost"
)

// LoadConfig reads configuration from environment variables, applying an
// optional YAML preset overlay when PRESETS_FILE and PRESET are set.
//
// Load order (later wins):
//  1. Built-in defaults
//  2. Named preset from the presets file, if configured
//  3. Environment variables
//
// Returns a ConfigError when required values are missing or invalid.
//
// Example:
//
//	cfg, err := core.LoadConfig()
//	if err != nil {
//	    logger.Fatal("Failed to load configuration", zap.Error(err))
//	}
func LoadConfig() (*Config, error) {
	cfg := &Config{
		LLMBaseURL:  DefaultLLMBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,

		MaxPages:           0,
		MaxChars:           DefaultMaxChars,
		FallbackMaxPages:   0,
		FallbackMaxChars:   DefaultMaxChars / 2,
		TruncationStrategy: StrategyHeadTail,
		TruncateChars:      DefaultTruncateChars,
		ChunkWords:         DefaultChunkWords,

		AITimeout:   DefaultAITimeoutSeconds * time.Second,
		MaxFileSize: DefaultMaxFileSize,

		CacheDir:             "./data",
		CacheTTL:             DefaultCacheTTLHours * time.Hour,
		CacheCleanupInterval: DefaultCacheCleanupMinutes * time.Minute,

		Host: DefaultHost,
		Port: DefaultPort,

		RateLimitMaxAttempts: 30,
		RateLimitWindowMin:   1,
		RateLimitBlockMin:    5,
	}

	// Overlay preset before env so explicit env vars still win.
	if presetFile := os.Getenv("PRESETS_FILE"); presetFile != "" {
		presetName := GetEnvOrDefault("PRESET", DefaultPresetName)
		if err := cfg.applyPreset(presetFile, presetName); err != nil {
			return nil, err
		}
	}

	cfg.LLMAPIKey = firstNonEmpty(os.Getenv("LLM_API_KEY"), os.Getenv("GROQ_API_KEY"))
	cfg.LLMBaseURL = GetEnvOrDefault("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.Model = GetEnvOrDefault("LLM_MODEL", cfg.Model)
	cfg.Temperature = ParseFloat64Env("LLM_TEMPERATURE", cfg.Temperature)
	cfg.MaxTokens = ParseIntEnv("LLM_MAX_TOKENS", cfg.MaxTokens)

	cfg.MaxPages = ParseIntEnv("EXTRACT_MAX_PAGES", cfg.MaxPages)
	cfg.MaxChars = ParseIntEnv("EXTRACT_MAX_CHARS", cfg.MaxChars)
	cfg.FallbackMaxPages = ParseIntEnv("FALLBACK_MAX_PAGES", cfg.FallbackMaxPages)
	cfg.FallbackMaxChars = ParseIntEnv("FALLBACK_MAX_CHARS", cfg.FallbackMaxChars)
	cfg.TruncationStrategy = GetEnvOrDefault("TRUNCATE_STRATEGY", cfg.TruncationStrategy)
	cfg.TruncateChars = ParseIntEnv("TRUNCATE_MAX_CHARS", cfg.TruncateChars)
	cfg.ChunkWords = ParseIntEnv("CHUNK_WORDS", cfg.ChunkWords)

	cfg.AITimeout = ParseDurationEnv("AI_TIMEOUT_SECONDS", int(cfg.AITimeout/time.Second))
	cfg.MaxFileSize = ParseInt64Env("MAX_FILE_SIZE", cfg.MaxFileSize)

	cfg.CacheDir = GetEnvOrDefault("CACHE_DIR", cfg.CacheDir)
	cfg.CacheTTL = time.Duration(ParseIntEnv("CACHE_TTL_HOURS", int(cfg.CacheTTL/time.Hour))) * time.Hour
	cfg.CacheCleanupInterval = time.Duration(ParseIntEnv("CACHE_CLEANUP_MINUTES", int(cfg.CacheCleanupInterval/time.Minute))) * time.Minute

	cfg.Host = GetEnvOrDefault("HOST", cfg.Host)
	cfg.Port = ParseIntEnv("PORT", cfg.Port)
	cfg.WebUIToken = os.Getenv("WEBUI_TOKEN")

	cfg.RateLimitMaxAttempts = ParseIntEnv("RATE_LIMIT_MAX_ATTEMPTS", cfg.RateLimitMaxAttempts)
	cfg.RateLimitWindowMin = ParseIntEnv("RATE_LIMIT_WINDOW_MINUTES", cfg.RateLimitWindowMin)
	cfg.RateLimitBlockMin = ParseIntEnv("RATE_LIMIT_BLOCK_MINUTES", cfg.RateLimitBlockMin)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent values.
// Returns a ConfigError describing the first problem found.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return ErrMissingAuth("llm")
	}
	if c.TruncationStrategy != StrategyHardCutoff && c.TruncationStrategy != StrategyHeadTail {
		return ErrInvalidConfigValue("TRUNCATE_STRATEGY", c.TruncationStrategy,
			fmt.Sprintf("must be %q or %q", StrategyHardCutoff, StrategyHeadTail))
	}
	if c.ChunkWords <= 0 {
		return ErrInvalidConfigValue("CHUNK_WORDS", fmt.Sprintf("%d", c.ChunkWords), "must be positive")
	}
	if c.TruncateChars <= 0 {
		return ErrInvalidConfigValue("TRUNCATE_MAX_CHARS", fmt.Sprintf("%d", c.TruncateChars), "must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return ErrInvalidConfigValue("PORT", fmt.Sprintf("%d", c.Port), "must be in range 1-65535")
	}
	return nil
}

// CachePath returns the path of the cache database file inside CacheDir.
func (c *Config) CachePath() string {
	return filepath.Join(c.CacheDir, "cache.db")
}

// DefaultPresetName is the preset applied when PRESETS_FILE is set but
// PRESET is not. It matches the "standard" entry in the shipped
// presets.yaml.
const DefaultPresetName = "standard"

// Preset is a named bundle of pipeline parameters loadable from YAML.
// Presets collapse the historical per-deployment variants (page limits,
// model, truncation heuristics) into one configurable pipeline.
type Preset struct {
	Model              string  `yaml:"model"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	MaxPages           int     `yaml:"max_pages"`
	MaxChars           int     `yaml:"max_chars"`
	TruncationStrategy string  `yaml:"truncation_strategy"`
	TruncateChars      int     `yaml:"truncate_chars"`
	ChunkWords         int     `yaml:"chunk_words"`
}

// presetFile is the YAML document shape: a map of preset name to Preset.
type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// applyPreset loads the named preset from a YAML file and overlays its
// non-zero fields onto the config.
func (c *Config) applyPreset(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrInvalidConfigValue("PRESETS_FILE", path, fmt.Sprintf("cannot read file: %v", err))
	}

	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return ErrInvalidConfigValue("PRESETS_FILE", path, fmt.Sprintf("invalid YAML: %v", err))
	}

	preset, ok := pf.Presets[name]
	if !ok {
		available := make([]string, 0, len(pf.Presets))
		for k := range pf.Presets {
			available = append(available, k)
		}
		return ErrInvalidConfigValue("PRESET", name,
			fmt.Sprintf("not found in %s (available: %s)", path, strings.Join(available, ", ")))
	}

	if preset.Model != "" {
		c.Model = preset.Model
	}
	if preset.Temperature != 0 {
		c.Temperature = preset.Temperature
	}
	if preset.MaxTokens != 0 {
		c.MaxTokens = preset.MaxTokens
	}
	if preset.MaxPages != 0 {
		c.MaxPages = preset.MaxPages
	}
	if preset.MaxChars != 0 {
		c.MaxChars = preset.MaxChars
	}
	if preset.TruncationStrategy != "" {
		c.TruncationStrategy = preset.TruncationStrategy
	}
	if preset.TruncateChars != 0 {
		c.TruncateChars = preset.TruncateChars
	}
	if preset.ChunkWords != 0 {
		c.ChunkWords = preset.ChunkWords
	}

	return nil
}

// firstNonEmpty returns the first non-empty string from the arguments.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
