// Package metrics provides pure data types for the pipeline metrics system.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// RunRecord represents a single analysis run.
// This is a pure data structure for tracking individual pipeline executions.
type RunRecord struct {
	// ID is the unique identifier for this run (correlation ID)
	ID string `json:"id"`

	// Kind identifies the analysis kind ("summary", "metrics", "risks")
	Kind string `json:"kind"`

	// DocHash is the sha256 of the analyzed document
	DocHash string `json:"doc_hash"`

	// Status indicates the outcome: "success", "error", "degraded"
	Status string `json:"status"`

	// StartTime is when the run began
	StartTime time.Time `json:"start_time"`

	// Duration is the total run time
	Duration time.Duration `json:"duration"`

	// Chunks is the number of chunks analyzed
	Chunks int `json:"chunks"`

	// LLMCalls is the number of completion calls issued
	LLMCalls int `json:"llm_calls"`

	// FailedChunks is the number of chunk calls that failed
	FailedChunks int `json:"failed_chunks"`

	// Reader is the PDF reader that produced the text
	Reader string `json:"reader,omitempty"`

	// CachedExtraction is true when extraction came from the cache
	CachedExtraction bool `json:"cached_extraction"`

	// CachedAnalysis is true when the run was served from the cache
	CachedAnalysis bool `json:"cached_analysis"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// RunMetrics represents aggregated pipeline statistics.
// This is a pure data structure with no behavior.
type RunMetrics struct {
	// TotalRuns is the total number of runs recorded
	TotalRuns int64 `json:"total_runs"`

	// TotalSuccess is the count of fully successful runs
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed runs
	TotalErrors int64 `json:"total_errors"`

	// TotalDegraded is the count of runs with at least one failed chunk
	TotalDegraded int64 `json:"total_degraded"`

	// TotalLLMCalls is the total completion calls issued across runs
	TotalLLMCalls int64 `json:"total_llm_calls"`

	// ExtractionCacheHits is the count of runs served extraction from cache
	ExtractionCacheHits int64 `json:"extraction_cache_hits"`

	// AnalysisCacheHits is the count of runs served entirely from cache
	AnalysisCacheHits int64 `json:"analysis_cache_hits"`

	// FallbackExtractions is the count of runs where the fallback reader was used
	FallbackExtractions int64 `json:"fallback_extractions"`

	// ByKind contains per-kind statistics
	ByKind map[string]*KindMetrics `json:"by_kind"`
}

// KindMetrics represents statistics for a specific analysis kind.
// This is a pure data structure with no behavior.
type KindMetrics struct {
	// Count is the total number of runs of this kind
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful runs (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average run time for this kind
	AvgDuration time.Duration `json:"avg_duration"`
}

// SystemStatus represents the overall service health and status.
// This is a pure data structure with no behavior.
type SystemStatus struct {
	// Health indicates the service state: "running", "error", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the service started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}

// Status constants for RunRecord
const (
	RunStatusSuccess  = "success"
	RunStatusError    = "error"
	RunStatusDegraded = "degraded"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning = "running"
	SystemHealthError   = "error"
	SystemHealthStopped = "stopped"
)

// fallbackReaderName is the Name() of the fallback page reader; runs
// reporting it are counted as fallback extractions.
const fallbackReaderName = "mupdf"
