// store.go implements the Store organism for in-memory metrics storage.
// It implements the Collector interface with a circular buffer of recent
// runs plus running aggregates, guarded by a sync.RWMutex.
package metrics

import (
	"sync"
	"time"
)

// Store is an in-memory storage organism for pipeline metrics.
//
// Usage:
//
//	store := NewStore(DefaultStoreConfig(), time.Now())
//	store.RecordRun(run)
//	stats := store.GetRunMetrics()
type Store struct {
	mu sync.RWMutex

	// Run history (circular buffer)
	runHistory []RunRecord
	runCap     int
	runHead    int
	runSize    int

	// Aggregates
	totalRuns           int64
	totalSuccess        int64
	totalErrors         int64
	totalDegraded       int64
	totalLLMCalls       int64
	extractionCacheHits int64
	analysisCacheHits   int64
	fallbackExtractions int64
	runsByKind          map[string]*kindStats

	// System metadata
	startTime time.Time
	version   string
	healthy   bool
}

// kindStats holds per-kind aggregation data
type kindStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the Store behavior.
type StoreConfig struct {
	// RunHistoryCapacity is the max number of runs to retain in history
	RunHistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		RunHistoryCapacity: 100,
		Version:            "0.0.0",
	}
}

// NewStore creates a new Store with the specified configuration.
// The startTime is used to calculate uptime.
func NewStore(config StoreConfig, startTime time.Time) *Store {
	capacity := config.RunHistoryCapacity
	if capacity < 1 {
		capacity = 100
	}

	return &Store{
		runHistory: make([]RunRecord, capacity),
		runCap:     capacity,
		runsByKind: make(map[string]*kindStats),
		startTime:  startTime,
		version:    config.Version,
		healthy:    true,
	}
}

// RecordRun logs a completed analysis run.
// This implements part of the Collector interface.
func (s *Store) RecordRun(run RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add to circular buffer
	s.runHistory[s.runHead] = run
	s.runHead = (s.runHead + 1) % s.runCap
	if s.runSize < s.runCap {
		s.runSize++
	}

	// Update aggregations
	s.totalRuns++
	s.totalLLMCalls += int64(run.LLMCalls)

	switch run.Status {
	case RunStatusSuccess:
		s.totalSuccess++
	case RunStatusError:
		s.totalErrors++
	case RunStatusDegraded:
		s.totalDegraded++
	}

	if run.CachedExtraction {
		s.extractionCacheHits++
	}
	if run.CachedAnalysis {
		s.analysisCacheHits++
	}
	if run.Reader == fallbackReaderName {
		s.fallbackExtractions++
	}

	stats, ok := s.runsByKind[run.Kind]
	if !ok {
		stats = &kindStats{}
		s.runsByKind[run.Kind] = stats
	}
	stats.count++
	if run.Status == RunStatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += run.Duration
}

// GetRunMetrics returns aggregated pipeline statistics.
// This implements part of the Collector interface.
func (s *Store) GetRunMetrics() RunMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := RunMetrics{
		TotalRuns:           s.totalRuns,
		TotalSuccess:        s.totalSuccess,
		TotalErrors:         s.totalErrors,
		TotalDegraded:       s.totalDegraded,
		TotalLLMCalls:       s.totalLLMCalls,
		ExtractionCacheHits: s.extractionCacheHits,
		AnalysisCacheHits:   s.analysisCacheHits,
		FallbackExtractions: s.fallbackExtractions,
		ByKind:              make(map[string]*KindMetrics),
	}

	for kind, stats := range s.runsByKind {
		var successRate float64
		var avgDuration time.Duration
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}
		result.ByKind[kind] = &KindMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return result
}

// GetRecentRuns returns the N most recent run records, newest first.
// If limit exceeds available runs, all available are returned.
// This implements part of the Collector interface.
func (s *Store) GetRecentRuns(limit int) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.runSize == 0 {
		return []RunRecord{}
	}
	if limit > s.runSize {
		limit = s.runSize
	}

	result := make([]RunRecord, limit)
	for i := 0; i < limit; i++ {
		// Work backwards from head to get newest first
		idx := (s.runHead - 1 - i + s.runCap) % s.runCap
		result[i] = s.runHistory[idx]
	}
	return result
}

// SetHealthy updates the service health flag reported by GetSystemStatus.
func (s *Store) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// GetSystemStatus returns the overall service health status.
// This implements part of the Collector interface.
func (s *Store) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	health := SystemHealthRunning
	if !s.healthy {
		health = SystemHealthError
	}

	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// Verify Store implements Collector interface
var _ Collector = (*Store)(nil)
