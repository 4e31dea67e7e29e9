package domain

// Mapping represents one shortened URL in our system
// It is the only persistent entity: a row in the short_urls table
//
// INVARIANTS (enforced by the store, not by this struct):
// - ID is the primary key
// - URL is unique across all mappings
// - Once written, a mapping is never updated or deleted
type Mapping struct {
	ID  string `json:"id"`  // The short identifier (e.g., "V1StGX")
	URL string `json:"url"` // The full URL to redirect to
}

// NewMapping is a constructor function for a mapping
func NewMapping(id, longURL string) *Mapping {
	return &Mapping{
		ID:  id,
		URL: longURL,
	}
}
