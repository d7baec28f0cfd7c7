// FinReport backend: a financial-report analysis service. It extracts
// text from uploaded PDF reports, runs chunked LLM analysis (summary,
// metrics, or risks), and serves results over a small HTTP API with a
// built-in web UI.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"finreport_backend/cache"
	"finreport_backend/core"
	"finreport_backend/core/validation"
	"finreport_backend/llm"
	"finreport_backend/logging"
	"finreport_backend/metrics"
	"finreport_backend/report"
	"finreport_backend/shutdown"
	"finreport_backend/webui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	// Windows service management commands (install/uninstall/...).
	if HandleServiceCommand(os.Args) {
		return core.ExitCodeSuccess
	}

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	// Initialize structured logger early
	logger, err := logging.NewLogger(isDevelopment, "finreport.log")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	// Run startup validation before heavy operations
	if exitCode := runStartupValidation(logger); exitCode != core.ExitCodeSuccess {
		return exitCode
	}

	// Load configuration (safe to call after validation passes)
	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("model", config.Model),
		zap.String("base_url", config.LLMBaseURL),
		zap.String("truncation_strategy", config.TruncationStrategy),
		zap.Int("truncate_chars", config.TruncateChars),
		zap.Int("chunk_words", config.ChunkWords),
		zap.Duration("ai_timeout", config.AITimeout),
		zap.String("cache_dir", config.CacheDir),
		zap.Duration("cache_ttl", config.CacheTTL),
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.Bool("auth_enabled", config.WebUIToken != ""),
		zap.Bool("dev_mode", isDevelopment),
	)

	manager := shutdown.NewManager(logger.Zap(), shutdown.WithTimeout(60*time.Second))

	// Open the result cache, running schema migrations on the way.
	store, err := cache.NewStore(cache.StoreConfig{
		Path:           config.CachePath(),
		MigrationsPath: cache.DefaultMigrationsPath,
		TTL:            config.CacheTTL,
	})
	if err != nil {
		logger.Error("Failed to open cache store", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("cache", 30, func(ctx context.Context) error {
		return store.Close()
	})

	// Wire the pipeline: LLM client -> processor, guarded so that an
	// analysis in flight is allowed to finish before shutdown proceeds.
	client := llm.NewClient(llm.ConfigFromCore(config))
	processor := report.NewProcessor(report.ProcessorConfigFromCore(config), client, store)
	processor.SetProgressCallback(func(stage string, progress float64, message string) {
		logger.Debug("Pipeline progress",
			zap.String("stage", stage),
			zap.Float64("progress", progress),
			zap.String("message", message),
		)
	})
	runner := &guardedRunner{processor: processor, manager: manager}

	collector := metrics.NewStore(metrics.StoreConfig{
		RunHistoryCapacity: 100,
		Version:            core.GetVersion(),
	}, startTime)

	// Bearer-token auth is optional; an empty token leaves the API open.
	var auth *webui.TokenAuth
	if config.WebUIToken != "" {
		auth, err = webui.NewTokenAuth(config.WebUIToken)
		if err != nil {
			logger.Error("Failed to configure authentication", zap.Error(err))
			return core.ExitCodeError
		}
	}

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	serverConfig.RateLimitMaxAttempts = config.RateLimitMaxAttempts
	serverConfig.RateLimitWindowMin = config.RateLimitWindowMin
	serverConfig.RateLimitBlockMin = config.RateLimitBlockMin
	serverConfig.AnalyzeConfig.MaxUploadBytes = config.MaxFileSize

	server, err := webui.NewServer(serverConfig, runner, collector, store, auth, logger.Zap())
	if err != nil {
		logger.Error("Failed to create web server", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("http-server", 10, func(ctx context.Context) error {
		collector.SetHealthy(false)
		return server.Shutdown(ctx)
	})
	manager.Register("cleanup-uploads", 45,
		shutdown.CleanupUploads(logger.Zap(), serverConfig.AnalyzeConfig.UploadDir))

	// Purge expired cache entries in the background until shutdown.
	go store.RunCleanupLoop(manager.Context(), config.CacheCleanupInterval,
		func(result cache.CleanupResult, err error) {
			if err != nil {
				logger.Error("Cache cleanup failed", zap.Error(err))
				return
			}
			if result.TotalDeleted > 0 {
				logger.Info("Cache cleanup complete",
					zap.Int64("extractions_deleted", result.ExtractionsDeleted),
					zap.Int64("analyses_deleted", result.AnalysesDeleted),
					zap.Duration("duration", result.Duration),
				)
			}
		})

	manager.Start()

	go func() {
		if err := server.Start(manager.Context()); err != nil && err != http.ErrServerClosed {
			logger.Error("Web server failed", zap.Error(err))
			manager.Trigger()
		}
	}()
	logger.Info("FinReport backend started",
		zap.String("addr", server.Addr()),
		zap.String("version", core.GetVersion()),
	)

	// Block until a signal or server failure, then run the sequence.
	manager.Wait()
	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}

	exitCode := manager.ExitCode()
	logger.Info("Goodbye!", zap.String("exit", core.ExitCodeName(exitCode)))
	return exitCode
}

// guardedRunner wraps the processor so each analysis counts as an
// in-flight run with the shutdown manager. Requests arriving during
// shutdown are rejected with shutdown.ErrTrackerClosed, which the
// analyze handler maps to 503.
type guardedRunner struct {
	processor *report.Processor
	manager   *shutdown.Manager
}

func (g *guardedRunner) Run(ctx context.Context, path string, kind report.Kind) (*report.RunResult, error) {
	var result *report.RunResult
	err := g.manager.WrapRun(ctx, "analyze", func(ctx context.Context) error {
		var runErr error
		result, runErr = g.processor.Run(ctx, path, kind)
		return runErr
	})
	return result, err
}

// runStartupValidation performs configuration validation with console
// progress output before any component starts.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(logger *logging.Logger) int {
	logger.Info("Starting startup validation...")

	suite := validation.NewValidationSuite().
		WithShowProgress(true).
		WithSkipConnectivity(os.Getenv("SKIP_CONNECTIVITY_CHECK") == "true")

	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Startup validation complete",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}
