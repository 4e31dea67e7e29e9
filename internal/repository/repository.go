package repository

import "context"

// MappingStore defines the interface for short-id mapping persistence
// This is the "Repository Pattern" - the service never talks to a database directly
//
// The store owns every durability and uniqueness guarantee:
// - primary key on the short id
// - unique constraint on the long URL
// Both must be enforced atomically by a single statement or transaction
type MappingStore interface {
	// InsertOrGet stores (id, longURL) unless longURL is already mapped
	// It returns the id that is actually stored for longURL: the candidate on insert,
	// the pre-existing id otherwise
	// If id is already used by a different URL it returns domain.ErrConflict
	InsertOrGet(ctx context.Context, id, longURL string) (string, error)

	// LookupByID returns the long URL for id, or domain.ErrNotFound
	LookupByID(ctx context.Context, id string) (string, error)

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases connections and file handles
	Close() error
}

// TableName is the name of the table (or bucket) holding the mappings
const TableName = "short_urls"
