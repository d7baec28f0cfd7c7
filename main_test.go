package main

import (
	"os"
	"testing"

	"finreport_backend/core"
	"finreport_backend/logging"
)

// createTestLoggerMain creates a logger for testing that writes to a temp file.
func createTestLoggerMain(t *testing.T) *logging.Logger {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "main_test_*.log")
	if err != nil {
		t.Fatalf("failed to create temp log file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	logger, err := logging.NewLogger(true, tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

func setValidationEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_BASE_URL", "")
	t.Setenv("TRUNCATE_STRATEGY", "")
	t.Setenv("CHUNK_WORDS", "")
	t.Setenv("TRUNCATE_MAX_CHARS", "")
	t.Setenv("CACHE_DIR", t.TempDir())
	t.Setenv("SKIP_CONNECTIVITY_CHECK", "true")
}

func TestRunStartupValidation_MissingCredentials(t *testing.T) {
	setValidationEnv(t)

	logger := createTestLoggerMain(t)
	defer logger.Sync()

	if code := runStartupValidation(logger); code != core.ExitCodeError {
		t.Errorf("exit code = %d, want %d with no LLM credentials", code, core.ExitCodeError)
	}
}

func TestRunStartupValidation_Valid(t *testing.T) {
	setValidationEnv(t)
	t.Setenv("LLM_API_KEY", "sk_test")

	logger := createTestLoggerMain(t)
	defer logger.Sync()

	if code := runStartupValidation(logger); code != core.ExitCodeSuccess {
		t.Errorf("exit code = %d, want %d", code, core.ExitCodeSuccess)
	}
}

func TestRunStartupValidation_BadPipelineConfig(t *testing.T) {
	setValidationEnv(t)
	t.Setenv("LLM_API_KEY", "sk_test")
	t.Setenv("TRUNCATE_STRATEGY", "bogus")

	logger := createTestLoggerMain(t)
	defer logger.Sync()

	if code := runStartupValidation(logger); code != core.ExitCodeError {
		t.Errorf("exit code = %d, want %d with bad strategy", code, core.ExitCodeError)
	}
}
