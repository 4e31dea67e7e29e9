package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorturl/internal/domain"
	"shorturl/internal/metrics"
	"shorturl/internal/repository"

	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		id  TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE
	)
`

// MappingRepository is a repository.MappingStore backed by a SQLite file
type MappingRepository struct {
	db *sql.DB
}

// compile-time assertion that we implement MappingStore
var _ repository.MappingStore = (*MappingRepository)(nil)

// Open opens (or creates) the SQLite database at path and makes sure the
// short_urls table exists. It is safe to call on an existing database.
func Open(ctx context.Context, path string) (*MappingRepository, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create directory %s: %w", domain.ErrStorageInit, dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: could not open SQLite database: %w", domain.ErrStorageInit, err)
	}

	// SQLite allows a single writer; one connection keeps writers queued in
	// database/sql instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create %s table: %w", domain.ErrStorageInit, repository.TableName, err)
	}

	return &MappingRepository{db: db}, nil
}

// dsn adds the pragmas we rely on to a plain file path
func dsn(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
}

// InsertOrGet inserts the mapping or returns the id already stored for the URL
// The upsert is a single statement, so SQLite evaluates both constraints atomically
func (r *MappingRepository) InsertOrGet(ctx context.Context, id, longURL string) (stored string, err error) {
	defer metrics.ObserveQuery("insert_or_get", time.Now(), &err)

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO short_urls (id, url) VALUES (?, ?)
		 ON CONFLICT(url) DO UPDATE SET url = excluded.url
		 RETURNING id`,
		id, longURL,
	).Scan(&stored)
	if err != nil {
		if isIDCollision(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrConflict, id)
		}
		return "", fmt.Errorf("%w: error adding mapping to database: %w", domain.ErrStorage, err)
	}

	return stored, nil
}

// isIDCollision reports whether err is a uniqueness failure
// URL duplicates are absorbed by the upsert, so only the id can be left
func isIDCollision(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// LookupByID returns the URL mapped to the provided id
func (r *MappingRepository) LookupByID(ctx context.Context, id string) (longURL string, err error) {
	defer metrics.ObserveQuery("lookup_by_id", time.Now(), &err)

	err = r.db.QueryRowContext(ctx, "SELECT url FROM short_urls WHERE id = ?", id).Scan(&longURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: error resolving id %s: %w", domain.ErrStorage, id, err)
	}

	return longURL, nil
}

// Count returns the number of stored mappings
func (r *MappingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM short_urls").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// Ping checks the database file is still usable
func (r *MappingRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Close closes the database
func (r *MappingRepository) Close() error {
	return r.db.Close()
}
