package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finreport_backend/report"
)

// testMigrationsPath points at the migrations directory relative to
// this package, which is where go test runs.
const testMigrationsPath = "file://migrations"

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	config := StoreConfig{
		Path:           filepath.Join(t.TempDir(), "cache.db"),
		MigrationsPath: testMigrationsPath,
		TTL:            ttl,
	}
	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testExtraction() *report.ExtractionResult {
	return &report.ExtractionResult{
		Text:            "extracted report text",
		Reader:          "ledongthuc",
		PagesRead:       12,
		Truncated:       true,
		UsedFallback:    false,
		EstimatedTokens: 5,
	}
}

func TestStore_ExtractionRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	want := testExtraction()
	if err := store.PutExtraction(ctx, "hash1", "fp1", want); err != nil {
		t.Fatalf("PutExtraction() error = %v", err)
	}

	got, ok, err := store.GetExtraction(ctx, "hash1", "fp1")
	if err != nil {
		t.Fatalf("GetExtraction() error = %v", err)
	}
	if !ok {
		t.Fatal("GetExtraction() ok = false, want hit")
	}
	if got.Text != want.Text || got.Reader != want.Reader || got.PagesRead != want.PagesRead {
		t.Errorf("GetExtraction() = %+v, want %+v", got, want)
	}
	if got.Truncated != want.Truncated || got.UsedFallback != want.UsedFallback {
		t.Errorf("flags = (%v,%v), want (%v,%v)",
			got.Truncated, got.UsedFallback, want.Truncated, want.UsedFallback)
	}
	if got.EstimatedTokens != want.EstimatedTokens {
		t.Errorf("EstimatedTokens = %d, want %d", got.EstimatedTokens, want.EstimatedTokens)
	}
}

func TestStore_ExtractionMiss(t *testing.T) {
	store := newTestStore(t, time.Hour)

	_, ok, err := store.GetExtraction(context.Background(), "absent", "fp1")
	if err != nil {
		t.Fatalf("GetExtraction() error = %v", err)
	}
	if ok {
		t.Error("GetExtraction() ok = true for an absent row")
	}
}

func TestStore_FingerprintIsolation(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.PutExtraction(ctx, "hash1", "fp1", testExtraction()); err != nil {
		t.Fatalf("PutExtraction() error = %v", err)
	}

	// Different extraction parameters must not serve the old row.
	_, ok, err := store.GetExtraction(ctx, "hash1", "fp2")
	if err != nil {
		t.Fatalf("GetExtraction() error = %v", err)
	}
	if ok {
		t.Error("row served across fingerprints")
	}
}

func TestStore_ReplaceOnWrite(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	first := testExtraction()
	if err := store.PutExtraction(ctx, "hash1", "fp1", first); err != nil {
		t.Fatalf("PutExtraction() error = %v", err)
	}

	second := testExtraction()
	second.Text = "replacement text"
	if err := store.PutExtraction(ctx, "hash1", "fp1", second); err != nil {
		t.Fatalf("second PutExtraction() error = %v", err)
	}

	got, ok, err := store.GetExtraction(ctx, "hash1", "fp1")
	if err != nil || !ok {
		t.Fatalf("GetExtraction() = %v, %v", ok, err)
	}
	if got.Text != "replacement text" {
		t.Errorf("Text = %q, want the replacement", got.Text)
	}
}

func TestStore_AnalysisRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.PutAnalysis(ctx, "hash1", report.KindSummary, "fp1", "the summary"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}

	text, ok, err := store.GetAnalysis(ctx, "hash1", report.KindSummary, "fp1")
	if err != nil || !ok {
		t.Fatalf("GetAnalysis() = %v, %v", ok, err)
	}
	if text != "the summary" {
		t.Errorf("text = %q", text)
	}

	// Same document, different kind: miss.
	_, ok, err = store.GetAnalysis(ctx, "hash1", report.KindRisks, "fp1")
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if ok {
		t.Error("analysis served across kinds")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.PutAnalysis(ctx, "hash1", report.KindSummary, "fp1", "old result"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}

	// Advance the clock past the TTL.
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok, err := store.GetAnalysis(ctx, "hash1", report.KindSummary, "fp1")
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if ok {
		t.Error("expired row was served")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	if err := store.PutAnalysis(ctx, "hash1", report.KindSummary, "fp1", "result"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	_, ok, err := store.GetAnalysis(ctx, "hash1", report.KindSummary, "fp1")
	if err != nil {
		t.Fatalf("GetAnalysis() error = %v", err)
	}
	if !ok {
		t.Error("row expired despite TTL being disabled")
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.PutExtraction(ctx, "hash1", "fp1", testExtraction()); err != nil {
		t.Fatalf("PutExtraction() error = %v", err)
	}
	if err := store.PutAnalysis(ctx, "hash1", report.KindSummary, "fp1", "result"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}

	// Nothing is expired yet.
	result, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if result.TotalDeleted != 0 {
		t.Errorf("TotalDeleted = %d, want 0 before expiry", result.TotalDeleted)
	}

	// Everything is expired now.
	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	result, err = store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if result.ExtractionsDeleted != 1 || result.AnalysesDeleted != 1 {
		t.Errorf("deleted = (%d,%d), want (1,1)",
			result.ExtractionsDeleted, result.AnalysesDeleted)
	}
	if result.TotalDeleted != 2 {
		t.Errorf("TotalDeleted = %d, want 2", result.TotalDeleted)
	}
}

func TestStore_Counts(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.PutExtraction(ctx, "hash1", "fp1", testExtraction()); err != nil {
		t.Fatalf("PutExtraction() error = %v", err)
	}
	if err := store.PutAnalysis(ctx, "hash1", report.KindSummary, "fp1", "a"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}
	if err := store.PutAnalysis(ctx, "hash1", report.KindRisks, "fp1", "b"); err != nil {
		t.Fatalf("PutAnalysis() error = %v", err)
	}

	extractions, analyses, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if extractions != 1 || analyses != 2 {
		t.Errorf("Counts() = (%d,%d), want (1,2)", extractions, analyses)
	}
}

func TestStore_ClosedStore(t *testing.T) {
	store := newTestStore(t, time.Hour)
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, _, err := store.GetAnalysis(context.Background(), "h", report.KindSummary, "fp")
	if !errors.Is(err, ErrStoreClosed) {
		t.Errorf("error = %v, want ErrStoreClosed", err)
	}

	// Close is idempotent.
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewStore_RequiresPath(t *testing.T) {
	if _, err := NewStore(StoreConfig{}); err == nil {
		t.Error("NewStore() with empty path expected error")
	}
}
