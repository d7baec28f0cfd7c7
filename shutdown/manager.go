package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"finreport_backend/core"

	"go.uber.org/zap"
)

// Manager coordinates graceful shutdown. It composes:
//   - RunTracker: tracks in-flight analysis runs
//   - Registry: ordered cleanup functions
//   - SignalCounter: handles repeated signals for force shutdown
//
// Usage:
//
//	manager := NewManager(logger)
//
//	// Register cleanup handlers (lower priority runs first)
//	manager.Register("http-server", 10, func(ctx context.Context) error {
//	    return server.Shutdown(ctx)
//	})
//	manager.Register("cache", 30, func(ctx context.Context) error {
//	    return store.Close()
//	})
//
//	// Start signal handling
//	manager.Start()
//
//	// In request handlers:
//	err := manager.WrapRun(ctx, "analyze", func(ctx context.Context) error {
//	    // ... run the pipeline ...
//	    return nil
//	})
//
//	// Block until shutdown, then execute the sequence
//	manager.Wait()
//	manager.Shutdown()
type Manager struct {
	logger   *zap.Logger
	timeout  time.Duration
	mu       sync.Mutex
	started  bool
	shutdown bool

	// Internal context management
	ctx    context.Context
	cancel context.CancelFunc

	// Composed molecules
	tracker  *RunTracker
	registry *Registry
	signals  *SignalCounter

	// Signal channel for cleanup
	sigChan chan os.Signal

	// exitCode records which signal ended the process
	exitCode int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout sets the shutdown timeout duration.
// Default is 60 seconds.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// NewManager creates a Manager ready to coordinate graceful shutdown.
// The logger is required and used for all shutdown-related logging.
//
// Default configuration:
//   - Timeout: 60 seconds
//   - Force shutdown on second signal
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		logger:   logger,
		timeout:  60 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  NewRunTracker(),
		registry: NewRegistry(),
		sigChan:  make(chan os.Signal, 1),
		exitCode: core.ExitCodeSuccess,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("Received second signal, forcing immediate shutdown")
		os.Exit(core.ExitCodeError)
	})

	return m
}

// Context returns the managed context that will be cancelled during shutdown.
// Components should use this context to detect when shutdown has been initiated.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function to be called during shutdown.
// Lower priority values are executed first; see Registry.Register for
// the priority conventions.
func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("Registered shutdown handler",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Start begins signal handling for SIGINT and SIGTERM.
// When a signal is received, the context is cancelled to initiate
// graceful shutdown. A second signal forces an immediate exit.
//
// It is safe to call Start multiple times; subsequent calls are no-ops.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range m.sigChan {
			count := m.signals.Increment()
			if count == 1 {
				m.logger.Info("Received shutdown signal, initiating graceful shutdown",
					zap.String("signal", sig.String()),
				)
				m.recordSignal(sig)
				m.cancel()
			}
			// Force shutdown is handled by SignalCounter callback
		}
	}()

	m.logger.Info("Shutdown manager started, listening for signals")
}

// recordSignal maps the terminating signal to its Unix exit code.
func (m *Manager) recordSignal(sig os.Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch sig {
	case syscall.SIGTERM:
		m.exitCode = core.ExitCodeSIGTERM
	default:
		m.exitCode = core.ExitCodeSIGINT
	}
}

// ExitCode returns the exit code the process should terminate with.
// It reflects the signal that initiated shutdown, or success when
// shutdown was requested programmatically.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// Trigger initiates shutdown programmatically, as if a signal arrived.
func (m *Manager) Trigger() {
	m.cancel()
}

// Shutdown executes the graceful shutdown sequence:
//  1. Close the run tracker to reject new runs
//  2. Wait for in-flight runs (with timeout)
//  3. Execute registered cleanup functions in priority order
//
// Shutdown is idempotent; subsequent calls are no-ops and return nil.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	m.mu.Unlock()

	startTime := time.Now()
	m.logger.Info("Initiating graceful shutdown",
		zap.Duration("timeout", m.timeout),
		zap.Int("registered_handlers", m.registry.Count()),
	)

	// Step 1: Stop accepting new runs
	m.tracker.Close()

	// Step 2: Wait for in-flight runs
	activeRuns := m.tracker.ActiveCount()
	if activeRuns > 0 {
		m.logger.Info("Waiting for in-flight runs",
			zap.Int64("active_count", activeRuns),
		)
	}

	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("Timeout waiting for in-flight runs",
			zap.Duration("waited", time.Since(startTime)),
			zap.Int64("remaining_runs", m.tracker.ActiveCount()),
		)
	}

	// Step 3: Execute cleanup functions with remaining timeout
	elapsed := time.Since(startTime)
	remaining := m.timeout - elapsed
	if remaining < time.Second {
		remaining = time.Second // Minimum 1 second for cleanup
	}

	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	m.logger.Info("Executing cleanup functions",
		zap.Strings("handlers", m.registry.Names()),
	)

	errs := m.registry.Shutdown(ctx)
	for _, err := range errs {
		m.logger.Error("Cleanup function failed", zap.Error(err))
	}

	duration := time.Since(startTime)
	if len(errs) > 0 {
		m.logger.Error("Shutdown completed with errors",
			zap.Duration("duration", duration),
			zap.Int("error_count", len(errs)),
		)
		return fmt.Errorf("shutdown had %d errors", len(errs))
	}

	m.logger.Info("Graceful shutdown completed",
		zap.Duration("duration", duration),
	)

	signal.Stop(m.sigChan)
	close(m.sigChan)

	return nil
}

// Wait blocks until the managed context is cancelled.
func (m *Manager) Wait() {
	<-m.ctx.Done()
}

// WrapRun executes a function while tracking it as an in-flight run.
// If the system is shutting down, ErrTrackerClosed is returned and the
// function is not executed.
//
// Example:
//
//	err := manager.WrapRun(ctx, "analyze", func(ctx context.Context) error {
//	    _, err := processor.Run(ctx, path, kind)
//	    return err
//	})
func (m *Manager) WrapRun(ctx context.Context, name string, fn func(context.Context) error) error {
	if !m.tracker.Start() {
		m.logger.Debug("Run rejected, system shutting down",
			zap.String("run", name),
		)
		return ErrTrackerClosed
	}
	defer m.tracker.Done()

	// Check if context is already cancelled
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return context.Canceled
	default:
	}

	return fn(ctx)
}

// ActiveRuns returns the count of currently in-flight runs.
func (m *Manager) ActiveRuns() int64 {
	return m.tracker.ActiveCount()
}

// IsShuttingDown returns true if shutdown has been initiated.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown || m.tracker.IsClosed()
}

// RegisteredHandlers returns the names of all registered cleanup
// handlers in priority order (first to execute is first in slice).
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}
