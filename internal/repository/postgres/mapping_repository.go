package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shorturl/internal/domain"
	"shorturl/internal/metrics"
	"shorturl/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the mapping table if it does not exist yet
// PRIMARY KEY on id and UNIQUE on url give us the bijection at storage level
const schema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		id  TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE
	)
`

// mappingRepository is the PostgreSQL implementation of repository.MappingStore
type mappingRepository struct {
	db *pgxpool.Pool // Connection pool for database connections
}

// NewMappingRepository creates a new PostgreSQL mapping repository
// The schema must already exist; use Open to create it
func NewMappingRepository(db *pgxpool.Pool) repository.MappingStore {
	return &mappingRepository{db: db}
}

// Open connects to PostgreSQL, makes sure the schema exists and returns the store
// Calling it again on an initialized database is a no-op for the schema
func Open(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (repository.MappingStore, error) {
	pool, err := InitDB(ctx, dsn, maxConns, minConns, maxLifetime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageInit, err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return NewMappingRepository(pool), nil
}

// EnsureSchema runs the idempotent CREATE TABLE statement
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to create %s table: %w", domain.ErrStorageInit, repository.TableName, err)
	}
	return nil
}

// InsertOrGet inserts the mapping or returns the id already stored for the URL
//
// ATOMIC UPSERT:
// ON CONFLICT (url) turns a duplicate URL into a no-op update so RETURNING
// yields the existing row's id. A duplicate id for a different URL is not
// covered by the conflict target and surfaces as a unique violation.
func (r *mappingRepository) InsertOrGet(ctx context.Context, id, longURL string) (stored string, err error) {
	defer metrics.ObserveQuery("insert_or_get", time.Now(), &err)

	query := `
		INSERT INTO short_urls (id, url)
		VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		RETURNING id
	`

	err = r.db.QueryRow(ctx, query, id, longURL).Scan(&stored)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%w: %s", domain.ErrConflict, id)
		}
		return "", fmt.Errorf("%w: failed to insert mapping: %w", domain.ErrStorage, err)
	}

	return stored, nil
}

// LookupByID retrieves the long URL stored under id
func (r *mappingRepository) LookupByID(ctx context.Context, id string) (longURL string, err error) {
	defer metrics.ObserveQuery("lookup_by_id", time.Now(), &err)

	query := `SELECT url FROM short_urls WHERE id = $1`

	err = r.db.QueryRow(ctx, query, id).Scan(&longURL)
	if err != nil {
		// pgx.ErrNoRows is returned when no rows match the query
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: failed to get mapping: %w", domain.ErrStorage, err)
	}

	return longURL, nil
}

// Ping checks that a connection can be acquired
func (r *mappingRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Close closes every connection in the pool
func (r *mappingRepository) Close() error {
	r.db.Close()
	return nil
}

// InitDB initializes the database connection pool
// This is called once at application startup
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool settings
	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
