package service

import (
	"context"
	"errors"
	"fmt"

	"shorturl/internal/domain"
	"shorturl/internal/metrics"
	"shorturl/internal/repository"
	"shorturl/internal/shortid"
	"shorturl/pkg/logger"
	"shorturl/pkg/validator"
)

// DefaultMaxAttempts bounds how many candidate ids Shorten tries
const DefaultMaxAttempts = 5

// Cache interface for resolved mappings
// GetURL returns "" with a nil error on a miss
type Cache interface {
	GetURL(ctx context.Context, id string) (string, error)
	SetURL(ctx context.Context, id, longURL string) error
}

// NopCache is the Cache used when no cache is configured
type NopCache struct{}

func (NopCache) GetURL(context.Context, string) (string, error) { return "", nil }
func (NopCache) SetURL(context.Context, string, string) error   { return nil }

// Options tunes id allocation
type Options struct {
	IDLength    int               // symbols per id, default shortid.DefaultLength
	MaxAttempts int               // candidates tried per Shorten, default DefaultMaxAttempts
	Generator   shortid.Generator // default shortid.New
}

// URLService handles business logic for URL operations
// This is the SERVICE LAYER - it sits between HTTP handlers and the mapping store
//
// It holds no mutable state of its own: any number of instances can
// allocate ids concurrently against one store, which is the only arbiter
// of conflicts
type URLService struct {
	store       repository.MappingStore
	cache       Cache
	logger      *logger.Logger
	idLength    int
	maxAttempts int
	generate    shortid.Generator
}

// NewURLService creates a new URL service
// A nil cache disables caching; a nil logger discards logs
func NewURLService(store repository.MappingStore, cache Cache, log *logger.Logger, opts Options) *URLService {
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = logger.Discard()
	}
	if opts.IDLength <= 0 {
		opts.IDLength = shortid.DefaultLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Generator == nil {
		opts.Generator = shortid.New
	}

	return &URLService{
		store:       store,
		cache:       cache,
		logger:      log,
		idLength:    opts.IDLength,
		maxAttempts: opts.MaxAttempts,
		generate:    opts.Generator,
	}
}

// Shorten returns the short id for longURL, allocating one if needed
//
// ALLOCATION LOOP:
// 1. Validate the URL (nothing is stored for invalid input)
// 2. Draw a random candidate id
// 3. Let the store insert it, or hand back the id the URL already has
// 4. On an id collision, draw again, up to maxAttempts times
func (s *URLService) Shorten(ctx context.Context, longURL string) (string, error) {
	if err := validator.ValidateURL(longURL); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	log := s.logger.WithContext(ctx)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidate, err := s.generate(s.idLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate short id: %w", err)
		}

		id, err := s.store.InsertOrGet(ctx, candidate, longURL)
		if errors.Is(err, domain.ErrConflict) {
			metrics.RecordCollision()
			log.Debug("Short id collision", "candidate", candidate, "attempt", attempt)
			continue
		}
		if err != nil {
			return "", err
		}

		metrics.RecordIDAllocated(id == candidate)

		// Warm the cache for the redirect that usually follows
		if err := s.cache.SetURL(ctx, id, longURL); err != nil {
			log.Warn("Failed to cache mapping", "id", id, "error", err)
		}

		return id, nil
	}

	metrics.RecordIDSpaceExhausted()
	log.Error("Short id space exhausted", "attempts", s.maxAttempts, "id_length", s.idLength)
	return "", fmt.Errorf("%w: %d attempts with length %d", domain.ErrIDSpaceExhausted, s.maxAttempts, s.idLength)
}

// Resolve returns the long URL for id
// Implements CACHE-ASIDE PATTERN; store errors, ErrNotFound included, pass through unchanged
func (s *URLService) Resolve(ctx context.Context, id string) (string, error) {
	// Ids outside the alphabet were never issued
	if !shortid.Valid(id) {
		metrics.RecordResolve("not_found")
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	log := s.logger.WithContext(ctx)

	cached, err := s.cache.GetURL(ctx, id)
	if err != nil {
		log.Warn("Cache lookup failed", "id", id, "error", err)
	} else if cached != "" {
		metrics.RecordResolve("hit")
		return cached, nil
	}

	longURL, err := s.store.LookupByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.RecordResolve("not_found")
		}
		return "", err
	}
	metrics.RecordResolve("miss")

	if err := s.cache.SetURL(ctx, id, longURL); err != nil {
		log.Warn("Failed to cache mapping", "id", id, "error", err)
	}

	return longURL, nil
}

// Ready reports whether the mapping store is reachable
func (s *URLService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
