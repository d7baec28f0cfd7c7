// Package shutdown coordinates graceful shutdown of the analysis
// backend. It composes core.ShutdownFunc handlers with in-flight run
// tracking and signal handling so that an analysis in progress finishes
// before the cache and server close underneath it.
package shutdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTrackerClosed is returned when trying to start a run on a closed tracker.
var ErrTrackerClosed = errors.New("run tracker is closed")

// ErrWaitTimeout is returned when Wait times out before all runs complete.
var ErrWaitTimeout = errors.New("wait timeout: runs did not complete in time")

// RunTracker tracks in-flight analysis runs and provides a mechanism to
// wait for them during graceful shutdown. A multi-chunk analysis can
// hold an LLM conversation open for minutes; killing it half-way wastes
// the completed chunk calls, so shutdown waits.
//
// Usage:
//
//	tracker := NewRunTracker()
//
//	// In the analyze handler:
//	if !tracker.Start() {
//	    return // shutting down, reject the upload
//	}
//	defer tracker.Done()
//
//	// During shutdown:
//	tracker.Close()
//	if err := tracker.Wait(60 * time.Second); err != nil {
//	    log.Println("timeout waiting for runs")
//	}
type RunTracker struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	active int64
	closed bool
}

// NewRunTracker creates a RunTracker ready to track runs.
func NewRunTracker() *RunTracker {
	return &RunTracker{}
}

// Start attempts to start tracking a new run.
// Returns true if the run was started, false if the tracker is closed.
//
// If Start returns true, the caller MUST call Done when the run
// completes. If Start returns false, the caller should reject the run
// as the system is shutting down.
func (t *RunTracker) Start() bool {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return false
	}
	t.mu.RUnlock()

	// Double-check with write lock to avoid race
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	t.wg.Add(1)
	atomic.AddInt64(&t.active, 1)
	t.mu.Unlock()
	return true
}

// Done marks a run as complete.
// Must be called exactly once for each successful Start call.
func (t *RunTracker) Done() {
	atomic.AddInt64(&t.active, -1)
	t.wg.Done()
}

// Wait blocks until all tracked runs complete or the timeout is reached.
// Returns nil if all runs completed, or ErrWaitTimeout otherwise.
func (t *RunTracker) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}

// Close marks the tracker as closed, preventing new runs from starting.
// Runs already in progress continue until they call Done.
func (t *RunTracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// ActiveCount returns the current number of active runs.
func (t *RunTracker) ActiveCount() int64 {
	return atomic.LoadInt64(&t.active)
}

// IsClosed returns true if the tracker has been closed.
func (t *RunTracker) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}
