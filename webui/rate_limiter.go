// rate_limiter.go protects the analyze endpoint from abuse by tracking
// requests per client IP.
//
// Molecule composition:
//   - core.AttemptRecord: tracks request count and window timing
//
// The limiter uses a sliding window:
//   - Each request increments the counter
//   - After maxAttempts in one window the IP is blocked for blockMinutes
//   - Old entries are periodically cleaned up
package webui

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finreport_backend/core"
)

// RateLimiter tracks per-IP request counts against a sliding window.
// Thread safety is provided via sync.RWMutex for concurrent access.
type RateLimiter struct {
	mu            sync.RWMutex
	attempts      map[string]core.AttemptRecord
	maxAttempts   int
	windowMinutes int
	blockMinutes  int
}

// NewRateLimiter creates a RateLimiter with the specified limits.
//
// Parameters:
//   - maxAttempts: requests allowed per window before blocking (e.g., 30)
//   - windowMinutes: window length in minutes (e.g., 1)
//   - blockMinutes: block length after the limit is hit (e.g., 5)
func NewRateLimiter(maxAttempts, windowMinutes, blockMinutes int) *RateLimiter {
	return &RateLimiter{
		attempts:      make(map[string]core.AttemptRecord),
		maxAttempts:   maxAttempts,
		windowMinutes: windowMinutes,
		blockMinutes:  blockMinutes,
	}
}

// Allow checks whether an IP may issue another request.
// Returns (true, 0) if allowed, or (false, remainingBlockTime) if blocked.
func (r *RateLimiter) Allow(ip string) (bool, time.Duration) {
	r.mu.RLock()
	record, exists := r.attempts[ip]
	r.mu.RUnlock()

	if !exists || record.ShouldReset() {
		return true, 0
	}
	if record.IsBlocked(r.maxAttempts) {
		return false, record.TimeUntilReset()
	}
	return true, 0
}

// Record counts a request against an IP. When the request hits the
// limit, the reset time is extended to the block duration.
func (r *RateLimiter) Record(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.attempts[ip]
	if !exists || record.ShouldReset() {
		window := time.Duration(r.windowMinutes) * time.Minute
		r.attempts[ip] = core.NewAttemptRecordWithWindow(window)
		return
	}

	record = record.Increment()
	if record.Count == r.maxAttempts {
		record = core.AttemptRecord{
			Count:   record.Count,
			ResetAt: time.Now().Add(time.Duration(r.blockMinutes) * time.Minute),
		}
	}
	r.attempts[ip] = record
}

// Reset clears the record for an IP.
func (r *RateLimiter) Reset(ip string) {
	r.mu.Lock()
	delete(r.attempts, ip)
	r.mu.Unlock()
}

// Cleanup removes expired records and returns how many were removed.
// Call periodically to prevent memory growth; see StartCleanupTicker.
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for ip, record := range r.attempts {
		if record.ShouldReset() {
			delete(r.attempts, ip)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker starts a background goroutine that periodically
// calls Cleanup. The ticker stops when ctx is cancelled.
func (r *RateLimiter) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Count returns the current number of tracked IP addresses.
func (r *RateLimiter) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attempts)
}

// Middleware wraps a handler with rate limiting, returning 429 with a
// Retry-After header when the client is blocked.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := getClientIP(req)
		allowed, remaining := r.Allow(ip)
		if !allowed {
			seconds := int(remaining.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		r.Record(ip)
		next.ServeHTTP(w, req)
	})
}
