// Package cache puts a bounded query cache in front of a Searcher.
package cache

import (
	"context"
	"log"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"typeahead/internal/domain"
	"typeahead/internal/source"
)

// flightTimeout bounds an upstream call shared by several callers. Each
// caller still gives up on its own context.
const flightTimeout = 30 * time.Second

// Searcher answers repeated queries from a least-recently-used cache and
// collapses concurrent identical misses into one upstream call. Failed
// searches are never cached.
type Searcher struct {
	next  source.Searcher
	cache *lru.Cache[string, []domain.Result]
	group singleflight.Group

	mu  sync.Mutex
	gen uint64 // bumped by Purge
}

// New wraps next with a cache holding at most capacity queries. A
// capacity <= 0 disables caching but keeps duplicate suppression.
func New(next source.Searcher, capacity int) (*Searcher, error) {
	s := &Searcher{next: next}
	if capacity > 0 {
		c, err := lru.New[string, []domain.Result](capacity)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// key normalises a query so trivially different spellings share an entry
func key(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Search returns cached results for query or asks the wrapped source. A
// caller joining a search already in flight waits on its own ctx; the
// shared call is not cancelled when the caller that started it leaves.
func (s *Searcher) Search(ctx context.Context, query string) ([]domain.Result, error) {
	k := key(query)
	if s.cache != nil {
		if results, ok := s.cache.Get(k); ok {
			log.Printf("Cache hit for '%s'", k)
			return slices.Clone(results), nil
		}
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	// Searches started before a purge are never joined after it
	flightKey := strconv.FormatUint(gen, 10) + "\x00" + k
	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		results, err := s.next.Search(flightCtx, query)
		if err != nil {
			return nil, err
		}
		s.store(gen, k, results)
		return results, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, source.Wrap(s.Name(), query, res.Err)
		}
		return slices.Clone(res.Val.([]domain.Result)), nil
	case <-ctx.Done():
		return nil, source.Wrap(s.Name(), query, ctx.Err())
	}
}

// store caches results unless a purge happened since the search began
func (s *Searcher) store(gen uint64, k string, results []domain.Result) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		log.Printf("Dropping results for '%s' fetched before a purge", k)
		return
	}
	s.cache.Add(k, results)
}

// Name reports the name of the wrapped source
func (s *Searcher) Name() string { return source.NameOf(s.next) }

// Purge drops every cached query. Searches still in flight will not
// write their results back.
func (s *Searcher) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Len returns the number of cached queries
func (s *Searcher) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
