// cleanup.go implements TTL eviction for the cache tables. Expired
// rows are deleted in one transaction, then VACUUM reclaims the space.
package cache

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	// ExtractionsDeleted is the number of expired extraction_cache rows removed
	ExtractionsDeleted int64
	// AnalysesDeleted is the number of expired analysis_cache rows removed
	AnalysesDeleted int64
	// TotalDeleted is the sum of all deleted rows
	TotalDeleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// tablesToClean lists the cache tables with TTL policies. All of them
// carry a created_at unix-seconds column.
var tablesToClean = []string{
	"extraction_cache",
	"analysis_cache",
}

// Cleanup deletes rows older than the store's TTL and runs VACUUM.
// With no TTL configured it is a no-op.
//
// Deletions run in a single transaction; if any table fails the whole
// pass is rolled back. VACUUM runs outside the transaction afterwards.
//
// Example:
//
//	result, err := store.Cleanup(ctx)
//	if err != nil {
//	    log.Printf("cache cleanup failed: %v", err)
//	}
//	log.Printf("evicted %d cache rows", result.TotalDeleted)
func (s *Store) Cleanup(ctx context.Context) (CleanupResult, error) {
	start := time.Now()
	result := CleanupResult{}

	if s.ttl <= 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return result, ErrStoreClosed
	}

	cutoff := s.now().Add(-s.ttl).Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback() // No-op if already committed
		}
	}()

	for _, table := range tablesToClean {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE created_at < ?", table), cutoff)
		if err != nil {
			return result, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("failed to count deleted rows in %s: %w", table, err)
		}

		switch table {
		case "extraction_cache":
			result.ExtractionsDeleted = deleted
		case "analysis_cache":
			result.AnalysesDeleted = deleted
		}
		result.TotalDeleted += deleted
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	tx = nil

	// VACUUM cannot run inside a transaction.
	if result.TotalDeleted > 0 {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			return result, fmt.Errorf("vacuum failed: %w", err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// RunCleanupLoop runs Cleanup every interval until ctx is cancelled.
// onResult, if non-nil, receives each pass's outcome; failures do not
// stop the loop.
//
// Example:
//
//	go store.RunCleanupLoop(ctx, cfg.CacheCleanupInterval, func(r cache.CleanupResult, err error) {
//	    if err != nil {
//	        logger.Errorw("Cache cleanup failed", "error", err)
//	    }
//	})
func (s *Store) RunCleanupLoop(ctx context.Context, interval time.Duration, onResult func(CleanupResult, error)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.Cleanup(ctx)
			if onResult != nil {
				onResult(result, err)
			}
		}
	}
}
