package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func successRun(kind string, d time.Duration) RunRecord {
	return RunRecord{
		ID:        "run-1",
		Kind:      kind,
		Status:    RunStatusSuccess,
		StartTime: time.Now(),
		Duration:  d,
		Chunks:    2,
		LLMCalls:  3,
		Reader:    "ledongthuc",
	}
}

func TestStore_RecordRunAggregates(t *testing.T) {
	store := NewStore(DefaultStoreConfig(), time.Now())

	store.RecordRun(successRun("summary", 2*time.Second))
	store.RecordRun(successRun("summary", 4*time.Second))
	store.RecordRun(RunRecord{Kind: "metrics", Status: RunStatusError, LLMCalls: 1})
	store.RecordRun(RunRecord{Kind: "risks", Status: RunStatusDegraded, LLMCalls: 4, FailedChunks: 1})

	m := store.GetRunMetrics()
	if m.TotalRuns != 4 {
		t.Errorf("TotalRuns = %d, want 4", m.TotalRuns)
	}
	if m.TotalSuccess != 2 || m.TotalErrors != 1 || m.TotalDegraded != 1 {
		t.Errorf("success/errors/degraded = %d/%d/%d, want 2/1/1",
			m.TotalSuccess, m.TotalErrors, m.TotalDegraded)
	}
	if m.TotalLLMCalls != 11 {
		t.Errorf("TotalLLMCalls = %d, want 11", m.TotalLLMCalls)
	}

	summary := m.ByKind["summary"]
	if summary == nil {
		t.Fatal("ByKind missing summary")
	}
	if summary.Count != 2 {
		t.Errorf("summary count = %d, want 2", summary.Count)
	}
	if summary.SuccessRate != 100 {
		t.Errorf("summary SuccessRate = %v, want 100", summary.SuccessRate)
	}
	if summary.AvgDuration != 3*time.Second {
		t.Errorf("summary AvgDuration = %v, want 3s", summary.AvgDuration)
	}
	if m.ByKind["metrics"].SuccessRate != 0 {
		t.Errorf("metrics SuccessRate = %v, want 0", m.ByKind["metrics"].SuccessRate)
	}
}

func TestStore_CacheAndFallbackCounters(t *testing.T) {
	store := NewStore(DefaultStoreConfig(), time.Now())

	store.RecordRun(RunRecord{Kind: "summary", Status: RunStatusSuccess, CachedExtraction: true})
	store.RecordRun(RunRecord{Kind: "summary", Status: RunStatusSuccess, CachedAnalysis: true})
	store.RecordRun(RunRecord{Kind: "summary", Status: RunStatusSuccess, Reader: "mupdf"})

	m := store.GetRunMetrics()
	if m.ExtractionCacheHits != 1 {
		t.Errorf("ExtractionCacheHits = %d, want 1", m.ExtractionCacheHits)
	}
	if m.AnalysisCacheHits != 1 {
		t.Errorf("AnalysisCacheHits = %d, want 1", m.AnalysisCacheHits)
	}
	if m.FallbackExtractions != 1 {
		t.Errorf("FallbackExtractions = %d, want 1", m.FallbackExtractions)
	}
}

func TestStore_GetRecentRuns(t *testing.T) {
	config := DefaultStoreConfig()
	config.RunHistoryCapacity = 3
	store := NewStore(config, time.Now())

	for i := 0; i < 5; i++ {
		store.RecordRun(RunRecord{ID: fmt.Sprintf("run-%d", i), Kind: "summary", Status: RunStatusSuccess})
	}

	recent := store.GetRecentRuns(10)
	if len(recent) != 3 {
		t.Fatalf("recent = %d records, want 3 (buffer capacity)", len(recent))
	}
	// Newest first; runs 0 and 1 were evicted.
	wantIDs := []string{"run-4", "run-3", "run-2"}
	for i, want := range wantIDs {
		if recent[i].ID != want {
			t.Errorf("recent[%d].ID = %q, want %q", i, recent[i].ID, want)
		}
	}
}

func TestStore_GetRecentRunsLimits(t *testing.T) {
	store := NewStore(DefaultStoreConfig(), time.Now())
	store.RecordRun(RunRecord{ID: "only", Kind: "summary", Status: RunStatusSuccess})

	if got := store.GetRecentRuns(0); len(got) != 0 {
		t.Errorf("GetRecentRuns(0) = %d records, want 0", len(got))
	}
	if got := store.GetRecentRuns(1); len(got) != 1 || got[0].ID != "only" {
		t.Errorf("GetRecentRuns(1) = %v", got)
	}
}

func TestStore_SystemStatus(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	config := DefaultStoreConfig()
	config.Version = "1.2.3"
	store := NewStore(config, start)

	status := store.GetSystemStatus()
	if status.Health != SystemHealthRunning {
		t.Errorf("Health = %q, want running", status.Health)
	}
	if status.Version != "1.2.3" {
		t.Errorf("Version = %q", status.Version)
	}
	if status.Uptime < time.Minute {
		t.Errorf("Uptime = %v, want at least 1m", status.Uptime)
	}

	store.SetHealthy(false)
	if got := store.GetSystemStatus().Health; got != SystemHealthError {
		t.Errorf("Health after SetHealthy(false) = %q, want error", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(DefaultStoreConfig(), time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.RecordRun(RunRecord{Kind: "summary", Status: RunStatusSuccess, LLMCalls: 1})
				store.GetRunMetrics()
				store.GetRecentRuns(10)
			}
		}()
	}
	wg.Wait()

	if m := store.GetRunMetrics(); m.TotalRuns != 1000 {
		t.Errorf("TotalRuns = %d, want 1000", m.TotalRuns)
	}
}
