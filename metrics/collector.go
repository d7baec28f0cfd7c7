// collector.go defines the Collector interface for aggregating metrics.
// This is a molecule that composes the atom-level types from types.go.
package metrics

// Collector defines the interface for collecting pipeline metrics.
//
// Implementation strategy:
// - Methods must be concurrency-safe; handlers record from request goroutines
// - Zero values are returned for unavailable metrics
type Collector interface {
	// RecordRun logs a completed analysis run.
	RecordRun(run RunRecord)

	// GetRunMetrics returns aggregated pipeline statistics.
	GetRunMetrics() RunMetrics

	// GetRecentRuns returns the N most recent run records, newest first.
	GetRecentRuns(limit int) []RunRecord

	// GetSystemStatus returns the overall service health status.
	GetSystemStatus() SystemStatus
}
