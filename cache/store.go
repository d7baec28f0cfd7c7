// store.go implements the Store organism that backs the processor's
// cache with SQLite. It composes:
//   - connection.go: WAL-mode SQLite connection
//   - migrate.go: schema migrations
//   - cleanup.go: TTL eviction
//
// Rows are immutable once written; re-running a pipeline with the same
// keys replaces the row. Lookups treat rows past the TTL as absent so a
// missed cleanup never serves stale data.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"finreport_backend/core"
	"finreport_backend/report"
)

// ErrStoreClosed is returned when an operation runs after Close.
var ErrStoreClosed = errors.New("cache store is closed")

// StoreConfig holds configuration for the cache store.
type StoreConfig struct {
	// Path is the SQLite database file path
	Path string
	// MigrationsPath is where the schema migrations live (file:// URL)
	MigrationsPath string
	// TTL is how long entries stay servable. Zero disables expiry.
	TTL time.Duration
	// ConnectionConfig allows customizing the SQLite connection
	ConnectionConfig *ConnectionConfig
}

// DefaultStoreConfig returns sensible defaults for the cache store.
func DefaultStoreConfig(path string) StoreConfig {
	return StoreConfig{
		Path:           path,
		MigrationsPath: DefaultMigrationsPath,
		TTL:            core.DefaultCacheTTLHours * time.Hour,
	}
}

// Store is the SQLite-backed implementation of report.Cache.
type Store struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	mu   sync.RWMutex

	// now is replaceable in tests to exercise TTL expiry
	now func() time.Time
}

// Interface guard.
var _ report.Cache = (*Store)(nil)

// NewStore opens (or creates) the cache database at config.Path and
// applies pending migrations.
//
// Example:
//
//	store, err := cache.NewStore(cache.DefaultStoreConfig(cfg.CachePath()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
func NewStore(config StoreConfig) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("cache database path is required")
	}

	migrationsPath := config.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = DefaultMigrationsPath
	}

	// golang-migrate owns the connection it migrates over, so the
	// schema is applied on a dedicated connection first.
	if err := MigrateUpFromPath(config.Path, migrationsPath); err != nil {
		return nil, fmt.Errorf("cache migration failed: %w", err)
	}

	var connConfig ConnectionConfig
	if config.ConnectionConfig != nil {
		connConfig = *config.ConnectionConfig
	} else {
		connConfig = DefaultConnectionConfig(config.Path)
	}

	db, err := NewSQLiteConnection(connConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &Store{
		db:   db,
		path: config.Path,
		ttl:  config.TTL,
		now:  time.Now,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	s.db = nil
	return nil
}

// Ping verifies the connection is alive. Used by health checks.
func (s *Store) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.Ping()
}

// GetExtraction returns a cached extraction, or ok=false when absent
// or expired.
func (s *Store) GetExtraction(ctx context.Context, docHash, fingerprint string) (*report.ExtractionResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, false, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT text, reader, pages_read, truncated, used_fallback, estimated_tokens
		FROM extraction_cache
		WHERE doc_hash = ? AND fingerprint = ? AND created_at >= ?`,
		docHash, fingerprint, s.expiryCutoff())

	var result report.ExtractionResult
	var truncated, usedFallback int
	err := row.Scan(&result.Text, &result.Reader, &result.PagesRead,
		&truncated, &usedFallback, &result.EstimatedTokens)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("extraction cache lookup failed: %w", err)
	}

	result.Truncated = truncated != 0
	result.UsedFallback = usedFallback != 0
	return &result, true, nil
}

// PutExtraction stores an extraction result, replacing any previous row
// for the same keys.
func (s *Store) PutExtraction(ctx context.Context, docHash, fingerprint string, result *report.ExtractionResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO extraction_cache
			(doc_hash, fingerprint, text, reader, pages_read, truncated, used_fallback, estimated_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		docHash, fingerprint, result.Text, result.Reader, result.PagesRead,
		boolToInt(result.Truncated), boolToInt(result.UsedFallback),
		result.EstimatedTokens, s.now().Unix())
	if err != nil {
		return fmt.Errorf("extraction cache write failed: %w", err)
	}
	return nil
}

// GetAnalysis returns a cached analysis text, or ok=false when absent
// or expired.
func (s *Store) GetAnalysis(ctx context.Context, docHash string, kind report.Kind, fingerprint string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return "", false, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT result FROM analysis_cache
		WHERE doc_hash = ? AND kind = ? AND fingerprint = ? AND created_at >= ?`,
		docHash, string(kind), fingerprint, s.expiryCutoff())

	var text string
	err := row.Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("analysis cache lookup failed: %w", err)
	}
	return text, true, nil
}

// PutAnalysis stores a final analysis text, replacing any previous row
// for the same keys.
func (s *Store) PutAnalysis(ctx context.Context, docHash string, kind report.Kind, fingerprint string, text string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache (doc_hash, kind, fingerprint, result, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		docHash, string(kind), fingerprint, text, s.now().Unix())
	if err != nil {
		return fmt.Errorf("analysis cache write failed: %w", err)
	}
	return nil
}

// Counts returns the number of live (unexpired) rows per table.
// Used by the stats endpoint.
func (s *Store) Counts(ctx context.Context) (extractions, analyses int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return 0, 0, ErrStoreClosed
	}

	cutoff := s.expiryCutoff()
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM extraction_cache WHERE created_at >= ?", cutoff).Scan(&extractions); err != nil {
		return 0, 0, fmt.Errorf("counting extraction cache: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analysis_cache WHERE created_at >= ?", cutoff).Scan(&analyses); err != nil {
		return 0, 0, fmt.Errorf("counting analysis cache: %w", err)
	}
	return extractions, analyses, nil
}

// expiryCutoff returns the oldest creation time (unix seconds) still
// considered live. With no TTL every row is live.
func (s *Store) expiryCutoff() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return s.now().Add(-s.ttl).Unix()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
