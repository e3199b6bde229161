package enrich

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"anidex/internal/catalog"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the cache layout changes; a mismatched
// database is cheap to throw away because every row can be refetched.
const schemaVersion = 1

// ErrSchemaMismatch indicates the cache database was written by a different
// version of the schema.
var ErrSchemaMismatch = errors.New("enrich cache schema mismatch")

// Store persists enrichment payloads in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to the cache database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Get returns the cached payload for one record, or (nil, false, nil) on a
// miss.
func (s *Store) Get(ctx context.Context, mediaType catalog.MediaType, tmdbID int64) (*catalog.Enrichment, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM enrich_cache WHERE media_type = ? AND tmdb_id = ?",
		string(mediaType), tmdbID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache row: %w", err)
	}

	var enrichment catalog.Enrichment
	if err := json.Unmarshal([]byte(payload), &enrichment); err != nil {
		return nil, false, fmt.Errorf("decode cache payload: %w", err)
	}
	return &enrichment, true, nil
}

// Put stores or replaces the payload for one record.
func (s *Store) Put(ctx context.Context, mediaType catalog.MediaType, tmdbID int64, enrichment *catalog.Enrichment) error {
	payload, err := json.Marshal(enrichment)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO enrich_cache (media_type, tmdb_id, payload) VALUES (?, ?, ?)",
		string(mediaType), tmdbID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("write cache row: %w", err)
	}
	return nil
}

// Count returns the number of cached records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM enrich_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache rows: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
