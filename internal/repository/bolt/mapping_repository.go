package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shorturl/internal/domain"
	"shorturl/internal/metrics"
	"shorturl/internal/repository"

	"go.etcd.io/bbolt"
)

var (
	// idBucket maps short id -> long URL (the primary key)
	idBucket = []byte(repository.TableName)
	// urlBucket maps long URL -> short id (the unique index)
	urlBucket = []byte(repository.TableName + "_by_url")
)

// MappingRepository is a repository.MappingStore backed by a bbolt file
// Both buckets are written in the same read-write transaction, and bbolt
// runs one writer at a time, so the two keys never disagree
type MappingRepository struct {
	db *bbolt.DB
}

var _ repository.MappingStore = (*MappingRepository)(nil)

// Open opens or creates the bbolt file at path and its buckets
func Open(path string) (*MappingRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageInit, err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: could not open bolt database: %w", domain.ErrStorageInit, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(idBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(urlBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create buckets: %w", domain.ErrStorageInit, err)
	}

	return &MappingRepository{db: db}, nil
}

// InsertOrGet stores the pair unless the URL is already mapped
func (r *MappingRepository) InsertOrGet(ctx context.Context, id, longURL string) (stored string, err error) {
	defer metrics.ObserveQuery("insert_or_get", time.Now(), &err)

	if err = ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		byURL := tx.Bucket(urlBucket)
		if existing := byURL.Get([]byte(longURL)); existing != nil {
			stored = string(existing)
			return nil
		}

		byID := tx.Bucket(idBucket)
		if byID.Get([]byte(id)) != nil {
			return fmt.Errorf("%w: %s", domain.ErrConflict, id)
		}

		if err := byID.Put([]byte(id), []byte(longURL)); err != nil {
			return err
		}
		if err := byURL.Put([]byte(longURL), []byte(id)); err != nil {
			return err
		}
		stored = id
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return "", err
		}
		return "", fmt.Errorf("%w: error adding mapping: %w", domain.ErrStorage, err)
	}

	return stored, nil
}

// LookupByID returns the URL stored under id
func (r *MappingRepository) LookupByID(ctx context.Context, id string) (longURL string, err error) {
	defer metrics.ObserveQuery("lookup_by_id", time.Now(), &err)

	if err = ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	found := false
	err = r.db.View(func(tx *bbolt.Tx) error {
		// Get returns memory owned by the transaction; copy it out
		if v := tx.Bucket(idBucket).Get([]byte(id)); v != nil {
			longURL = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	return longURL, nil
}

// Count returns the number of stored mappings
func (r *MappingRepository) Count() (n int, err error) {
	err = r.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(idBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Ping reports whether the database is still open
func (r *MappingRepository) Ping(ctx context.Context) error {
	err := r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(idBucket) == nil {
			return fmt.Errorf("bucket %s missing", idBucket)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Close syncs and closes the database file
func (r *MappingRepository) Close() error {
	if err := r.db.Sync(); err != nil {
		return err
	}
	return r.db.Close()
}
