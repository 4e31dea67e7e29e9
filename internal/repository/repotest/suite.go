// Package repotest holds the behavior every repository.MappingStore must have.
// Backends run it from their own tests with suite.Run.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"shorturl/internal/domain"
	"shorturl/internal/repository"

	"github.com/stretchr/testify/suite"
)

// MappingStoreSuite checks the InsertOrGet / LookupByID contract
// Open must return an empty, initialized store
type MappingStoreSuite struct {
	suite.Suite
	Open func(t *testing.T) repository.MappingStore

	store repository.MappingStore
	ctx   context.Context
}

func (s *MappingStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.Open(s.T())
}

func (s *MappingStoreSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *MappingStoreSuite) TestInsertNewMapping() {
	id, err := s.store.InsertOrGet(s.ctx, "abc123", "https://example.com/a")
	s.Require().NoError(err)
	s.Equal("abc123", id)

	longURL, err := s.store.LookupByID(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("https://example.com/a", longURL)
}

func (s *MappingStoreSuite) TestExistingURLKeepsOriginalID() {
	_, err := s.store.InsertOrGet(s.ctx, "first1", "https://example.com/a")
	s.Require().NoError(err)

	id, err := s.store.InsertOrGet(s.ctx, "second", "https://example.com/a")
	s.Require().NoError(err)
	s.Equal("first1", id)

	// The unused candidate must not have been stored
	_, err = s.store.LookupByID(s.ctx, "second")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *MappingStoreSuite) TestSameIDSameURLIsNoop() {
	_, err := s.store.InsertOrGet(s.ctx, "abc123", "https://example.com/a")
	s.Require().NoError(err)

	id, err := s.store.InsertOrGet(s.ctx, "abc123", "https://example.com/a")
	s.Require().NoError(err)
	s.Equal("abc123", id)
}

func (s *MappingStoreSuite) TestIDCollisionIsConflict() {
	_, err := s.store.InsertOrGet(s.ctx, "abc123", "https://example.com/a")
	s.Require().NoError(err)

	_, err = s.store.InsertOrGet(s.ctx, "abc123", "https://example.com/b")
	s.ErrorIs(err, domain.ErrConflict)
	s.NotErrorIs(err, domain.ErrStorage)

	// The existing mapping is untouched and the new URL was not stored
	longURL, err := s.store.LookupByID(s.ctx, "abc123")
	s.Require().NoError(err)
	s.Equal("https://example.com/a", longURL)

	id, err := s.store.InsertOrGet(s.ctx, "other1", "https://example.com/b")
	s.Require().NoError(err)
	s.Equal("other1", id)
}

func (s *MappingStoreSuite) TestLookupUnknownID() {
	_, err := s.store.LookupByID(s.ctx, "doesnotexist")
	s.ErrorIs(err, domain.ErrNotFound)
	s.NotErrorIs(err, domain.ErrStorage)
}

func (s *MappingStoreSuite) TestDistinctURLsGetDistinctIDs() {
	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/a?x=1",
		"http://example.com/a",
	}

	for i, u := range urls {
		id, err := s.store.InsertOrGet(s.ctx, fmt.Sprintf("id%04d", i), u)
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("id%04d", i), id)
	}

	for i, u := range urls {
		longURL, err := s.store.LookupByID(s.ctx, fmt.Sprintf("id%04d", i))
		s.Require().NoError(err)
		s.Equal(u, longURL)
	}
}

func (s *MappingStoreSuite) TestConcurrentInsertSameURL() {
	const workers = 16

	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = s.store.InsertOrGet(s.ctx, fmt.Sprintf("cand%02d", i), "https://example.com/same")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		s.Require().NoError(errs[i])
		s.Equal(ids[0], ids[i])
	}

	// Exactly one candidate made it into the store
	stored := 0
	for i := 0; i < workers; i++ {
		if _, err := s.store.LookupByID(s.ctx, fmt.Sprintf("cand%02d", i)); err == nil {
			stored++
		}
	}
	s.Equal(1, stored)
}

func (s *MappingStoreSuite) TestConcurrentInsertDistinctURLs() {
	const workers = 16

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.store.InsertOrGet(s.ctx, fmt.Sprintf("uniq%02d", i), fmt.Sprintf("https://example.com/%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		s.Require().NoError(errs[i])
		longURL, err := s.store.LookupByID(s.ctx, fmt.Sprintf("uniq%02d", i))
		s.Require().NoError(err)
		s.Equal(fmt.Sprintf("https://example.com/%d", i), longURL)
	}
}

func (s *MappingStoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
