package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"finreport_backend/core"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("TRUNCATE_STRATEGY", "")
	t.Setenv("CHUNK_WORDS", "")
	t.Setenv("TRUNCATE_MAX_CHARS", "")
	t.Setenv("CACHE_DIR", "")
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://api.groq.com/openai/v1", false},
		{"http", "http://localhost:8080/v1", false},
		{"no scheme", "api.groq.com/v1", true},
		{"wrong scheme", "ftp://api.groq.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidator_CheckEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	validator := NewConfigValidator().WithEnvPath(envPath)
	if result := validator.CheckEnvFile(); result.Valid {
		t.Error("missing .env reported as valid")
	}

	if err := os.WriteFile(envPath, []byte("LLM_API_KEY=x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := validator.CheckEnvFile(); !result.Valid {
		t.Errorf("existing .env reported invalid: %v", result.Error)
	}
}

func TestConfigValidator_CheckLLMCredentials(t *testing.T) {
	clearLLMEnv(t)
	validator := NewConfigValidator()

	result := validator.CheckLLMCredentials()
	if result.Valid {
		t.Error("missing credentials reported as valid")
	}
	var configErr *core.ConfigError
	if !errors.As(result.Error, &configErr) || configErr.Code != core.ErrCodeMissingAuth {
		t.Errorf("error = %v, want ConfigError with code %s", result.Error, core.ErrCodeMissingAuth)
	}

	t.Setenv("GROQ_API_KEY", "gsk_test")
	if result := validator.CheckLLMCredentials(); !result.Valid {
		t.Errorf("GROQ_API_KEY alone should satisfy credentials check: %v", result.Error)
	}
}

func TestConfigValidator_CheckBaseURL(t *testing.T) {
	clearLLMEnv(t)
	validator := NewConfigValidator()

	// Unset falls back to the built-in default.
	if result := validator.CheckBaseURL(); !result.Valid {
		t.Errorf("default base URL reported invalid: %v", result.Error)
	}

	t.Setenv("LLM_BASE_URL", "not-a-url")
	if result := validator.CheckBaseURL(); result.Valid {
		t.Error("malformed base URL reported as valid")
	}
}

func TestConfigValidator_CheckPipelineParameters(t *testing.T) {
	clearLLMEnv(t)
	validator := NewConfigValidator()

	if result := validator.CheckPipelineParameters(); !result.Valid {
		t.Errorf("defaults reported invalid: %v", result.Error)
	}

	t.Setenv("TRUNCATE_STRATEGY", "guillotine")
	if result := validator.CheckPipelineParameters(); result.Valid {
		t.Error("unknown strategy reported as valid")
	}

	t.Setenv("TRUNCATE_STRATEGY", core.StrategyHardCutoff)
	t.Setenv("CHUNK_WORDS", "-5")
	if result := validator.CheckPipelineParameters(); result.Valid {
		t.Error("negative chunk size reported as valid")
	}
}

func TestConfigValidator_CheckCacheDir(t *testing.T) {
	clearLLMEnv(t)
	validator := NewConfigValidator()

	// Points at a fresh, creatable directory.
	t.Setenv("CACHE_DIR", filepath.Join(t.TempDir(), "data"))
	if result := validator.CheckCacheDir(); !result.Valid {
		t.Errorf("creatable cache dir reported invalid: %v", result.Error)
	}
}

func TestConfigValidator_ValidateRequired(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("CACHE_DIR", t.TempDir())
	validator := NewConfigValidator()

	if err := validator.ValidateRequired(); err == nil {
		t.Error("expected error with no credentials configured")
	}

	t.Setenv("LLM_API_KEY", "sk_test")
	if err := validator.ValidateRequired(); err != nil {
		t.Errorf("ValidateRequired() error = %v", err)
	}
	if !validator.IsValid() {
		t.Error("IsValid() = false with valid configuration")
	}
}
