package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"shorturl/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== MOCKS ====================

// MockMappingStore is a mock implementation of repository.MappingStore
type MockMappingStore struct {
	mock.Mock
}

func (m *MockMappingStore) InsertOrGet(ctx context.Context, id, longURL string) (string, error) {
	args := m.Called(ctx, id, longURL)
	return args.String(0), args.Error(1)
}

func (m *MockMappingStore) LookupByID(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockMappingStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMappingStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockCache) SetURL(ctx context.Context, id, longURL string) error {
	args := m.Called(ctx, id, longURL)
	return args.Error(0)
}

// ==================== HELPERS ====================

// sequence returns a Generator that yields ids in order, then fails
func sequence(ids ...string) func(int) (string, error) {
	var mu sync.Mutex
	next := 0
	return func(int) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(ids) {
			return "", errors.New("sequence exhausted")
		}
		id := ids[next]
		next++
		return id, nil
	}
}

func newTestService(store *MockMappingStore, cache *MockCache, opts Options) *URLService {
	return NewURLService(store, cache, nil, opts)
}

// ==================== SHORTEN TESTS ====================

func TestShorten_NewMapping(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{Generator: sequence("aaaaaa")})

	store.On("InsertOrGet", ctx, "aaaaaa", "https://example.com/a").Return("aaaaaa", nil)
	cache.On("SetURL", ctx, "aaaaaa", "https://example.com/a").Return(nil)

	// Act
	id, err := svc.Shorten(ctx, "https://example.com/a")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", id)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestShorten_ExistingURLReturnsStoredID(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{Generator: sequence("bbbbbb")})

	// The store already maps the URL to "aaaaaa"; the candidate is discarded
	store.On("InsertOrGet", ctx, "bbbbbb", "https://example.com/a").Return("aaaaaa", nil)
	cache.On("SetURL", ctx, "aaaaaa", "https://example.com/a").Return(nil)

	id, err := svc.Shorten(ctx, "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", id)
	store.AssertExpectations(t)
}

func TestShorten_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{Generator: sequence("aaaaaa", "bbbbbb", "cccccc")})

	conflict := fmt.Errorf("%w: aaaaaa", domain.ErrConflict)
	store.On("InsertOrGet", ctx, "aaaaaa", "https://example.com/b").Return("", conflict).Once()
	store.On("InsertOrGet", ctx, "bbbbbb", "https://example.com/b").Return("bbbbbb", nil).Once()
	cache.On("SetURL", ctx, "bbbbbb", "https://example.com/b").Return(nil)

	id, err := svc.Shorten(ctx, "https://example.com/b")

	require.NoError(t, err)
	assert.Equal(t, "bbbbbb", id)
	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "InsertOrGet", 2)
}

func TestShorten_IDSpaceExhausted(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{
		MaxAttempts: 3,
		Generator:   sequence("aaaaaa", "bbbbbb", "cccccc", "dddddd"),
	})

	store.On("InsertOrGet", ctx, mock.Anything, "https://example.com/b").Return("", domain.ErrConflict)

	id, err := svc.Shorten(ctx, "https://example.com/b")

	assert.Empty(t, id)
	assert.ErrorIs(t, err, domain.ErrIDSpaceExhausted)
	store.AssertNumberOfCalls(t, "InsertOrGet", 3)
	cache.AssertNotCalled(t, "SetURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestShorten_SingleAttempt(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	svc := newTestService(store, new(MockCache), Options{
		MaxAttempts: 1,
		Generator:   sequence("aaaaaa", "bbbbbb"),
	})

	store.On("InsertOrGet", ctx, "aaaaaa", "https://example.com/b").Return("", domain.ErrConflict)

	_, err := svc.Shorten(ctx, "https://example.com/b")

	assert.ErrorIs(t, err, domain.ErrIDSpaceExhausted)
	store.AssertNumberOfCalls(t, "InsertOrGet", 1)
}

func TestShorten_StorageErrorIsNotRetried(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	svc := newTestService(store, new(MockCache), Options{Generator: sequence("aaaaaa", "bbbbbb")})

	storageErr := fmt.Errorf("%w: connection reset", domain.ErrStorage)
	store.On("InsertOrGet", ctx, "aaaaaa", "https://example.com/a").Return("", storageErr)

	_, err := svc.Shorten(ctx, "https://example.com/a")

	assert.Equal(t, storageErr, err)
	store.AssertNumberOfCalls(t, "InsertOrGet", 1)
}

func TestShorten_GeneratorFailure(t *testing.T) {
	store := new(MockMappingStore)
	svc := newTestService(store, new(MockCache), Options{Generator: sequence()})

	_, err := svc.Shorten(context.Background(), "https://example.com/a")

	assert.Error(t, err)
	store.AssertNotCalled(t, "InsertOrGet", mock.Anything, mock.Anything, mock.Anything)
}

func TestShorten_CacheFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{Generator: sequence("aaaaaa")})

	store.On("InsertOrGet", ctx, "aaaaaa", "https://example.com/a").Return("aaaaaa", nil)
	cache.On("SetURL", ctx, "aaaaaa", "https://example.com/a").Return(errors.New("redis down"))

	id, err := svc.Shorten(ctx, "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", id)
}

// ==================== RESOLVE TESTS ====================

func TestResolve_CacheHit(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{})

	cache.On("GetURL", ctx, "abc123").Return("https://example.com/a", nil)

	longURL, err := svc.Resolve(ctx, "abc123")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", longURL)
	// Store should NOT be called (cache hit)
	store.AssertNotCalled(t, "LookupByID", mock.Anything, mock.Anything)
}

func TestResolve_CacheMiss(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{})

	cache.On("GetURL", ctx, "abc123").Return("", nil)
	store.On("LookupByID", ctx, "abc123").Return("https://example.com/a", nil)
	cache.On("SetURL", ctx, "abc123", "https://example.com/a").Return(nil)

	longURL, err := svc.Resolve(ctx, "abc123")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", longURL)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestResolve_CacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{})

	cache.On("GetURL", ctx, "abc123").Return("", errors.New("redis down"))
	store.On("LookupByID", ctx, "abc123").Return("https://example.com/a", nil)
	cache.On("SetURL", ctx, "abc123", "https://example.com/a").Return(errors.New("redis down"))

	longURL, err := svc.Resolve(ctx, "abc123")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", longURL)
}

func TestResolve_NotFound(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{})

	notFound := fmt.Errorf("%w: zzzzzz", domain.ErrNotFound)
	cache.On("GetURL", ctx, "zzzzzz").Return("", nil)
	store.On("LookupByID", ctx, "zzzzzz").Return("", notFound)

	_, err := svc.Resolve(ctx, "zzzzzz")

	assert.Equal(t, notFound, err)
	cache.AssertNotCalled(t, "SetURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_MalformedIDSkipsStore(t *testing.T) {
	store := new(MockMappingStore)
	cache := new(MockCache)
	svc := newTestService(store, cache, Options{})

	for _, id := range []string{"", "abc.de", "favicon.ico", "a/b"} {
		_, err := svc.Resolve(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "id %q", id)
	}

	store.AssertNotCalled(t, "LookupByID", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "GetURL", mock.Anything, mock.Anything)
}

func TestReady(t *testing.T) {
	ctx := context.Background()
	store := new(MockMappingStore)
	svc := newTestService(store, new(MockCache), Options{})

	store.On("Ping", ctx).Return(nil).Once()
	assert.NoError(t, svc.Ready(ctx))

	store.On("Ping", ctx).Return(domain.ErrStorage).Once()
	assert.ErrorIs(t, svc.Ready(ctx), domain.ErrStorage)
}

// ==================== TABLE-DRIVEN TESTS ====================

func TestShorten_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"blank", "  "},
		{"not a url", "not a url"},
		{"no scheme", "example.com/a"},
		{"ftp scheme", "ftp://example.com"},
		{"missing host", "https://"},
		{"trailing space", "https://example.com/a "},
		{"leading space", " https://example.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockMappingStore)
			svc := newTestService(store, new(MockCache), Options{})

			_, err := svc.Shorten(context.Background(), tt.url)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			store.AssertNotCalled(t, "InsertOrGet", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
