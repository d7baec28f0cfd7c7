package core

import (
	"time"
)

// DefaultRateLimitWindow is the default time window for rate limiting (1 minute).
const DefaultRateLimitWindow = time.Minute

// DefaultMaxAttempts is the default number of analysis requests allowed
// per window before rate limiting kicks in.
const DefaultMaxAttempts = 30

// AttemptRecord tracks requests from a single client for rate limiting
// purposes. Each record is associated with an identifier (typically an
// IP address).
type AttemptRecord struct {
	// Count is the number of requests within the current window
	Count int

	// ResetAt is when the request count should reset
	ResetAt time.Time
}

// NewAttemptRecord creates a new AttemptRecord with count=1 and default window duration.
func NewAttemptRecord() AttemptRecord {
	return AttemptRecord{
		Count:   1,
		ResetAt: time.Now().Add(DefaultRateLimitWindow),
	}
}

// NewAttemptRecordWithWindow creates a new AttemptRecord with count=1 and custom window duration.
func NewAttemptRecordWithWindow(window time.Duration) AttemptRecord {
	return AttemptRecord{
		Count:   1,
		ResetAt: time.Now().Add(window),
	}
}

// ShouldReset returns true if the current time is past the ResetAt time.
func (a AttemptRecord) ShouldReset() bool {
	return time.Now().After(a.ResetAt)
}

// IsBlocked returns true if the request count has reached or exceeded the given limit.
func (a AttemptRecord) IsBlocked(maxAttempts int) bool {
	return a.Count >= maxAttempts
}

// TimeUntilReset returns the duration until the attempt record resets.
// Returns zero if already past reset time.
func (a AttemptRecord) TimeUntilReset() time.Duration {
	remaining := time.Until(a.ResetAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Increment returns a copy of the record with the count increased by one.
// The reset time is unchanged; counts accumulate within a window.
func (a AttemptRecord) Increment() AttemptRecord {
	return AttemptRecord{
		Count:   a.Count + 1,
		ResetAt: a.ResetAt,
	}
}
