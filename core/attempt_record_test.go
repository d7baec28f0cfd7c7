package core

import (
	"testing"
	"time"
)

func TestNewAttemptRecord(t *testing.T) {
	record := NewAttemptRecord()

	if record.Count != 1 {
		t.Errorf("Count = %d, want 1", record.Count)
	}
	if !record.ResetAt.After(time.Now()) {
		t.Error("ResetAt should be in the future")
	}
}

func TestAttemptRecord_ShouldReset(t *testing.T) {
	past := AttemptRecord{Count: 3, ResetAt: time.Now().Add(-time.Minute)}
	if !past.ShouldReset() {
		t.Error("record with past ResetAt should reset")
	}

	future := AttemptRecord{Count: 3, ResetAt: time.Now().Add(time.Minute)}
	if future.ShouldReset() {
		t.Error("record with future ResetAt should not reset")
	}
}

func TestAttemptRecord_IsBlocked(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		maxAttempts int
		want        bool
	}{
		{"under limit", 2, 5, false},
		{"at limit", 5, 5, true},
		{"over limit", 6, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := AttemptRecord{Count: tt.count, ResetAt: time.Now().Add(time.Minute)}
			if got := record.IsBlocked(tt.maxAttempts); got != tt.want {
				t.Errorf("IsBlocked(%d) = %v, want %v", tt.maxAttempts, got, tt.want)
			}
		})
	}
}

func TestAttemptRecord_Increment(t *testing.T) {
	record := NewAttemptRecord()
	incremented := record.Increment()

	if incremented.Count != 2 {
		t.Errorf("Count after Increment = %d, want 2", incremented.Count)
	}
	if !incremented.ResetAt.Equal(record.ResetAt) {
		t.Error("Increment should not change ResetAt")
	}
}

func TestAttemptRecord_TimeUntilReset(t *testing.T) {
	expired := AttemptRecord{ResetAt: time.Now().Add(-time.Second)}
	if got := expired.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0 for expired record", got)
	}

	active := AttemptRecord{ResetAt: time.Now().Add(time.Minute)}
	if got := active.TimeUntilReset(); got <= 0 {
		t.Errorf("TimeUntilReset() = %v, want positive", got)
	}
}
