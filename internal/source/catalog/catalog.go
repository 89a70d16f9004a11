// Package catalog is a Searcher over an in-memory list of results loaded
// from a local file, ranked with fzf's fuzzy matcher.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"typeahead/internal/domain"
	"typeahead/internal/source"
)

const name = "catalog"

// prefixBonus lifts titles that start with the query above scattered matches
const prefixBonus = 1000

func init() {
	algo.Init("default")
}

// Source searches a catalog held in memory. It is safe for concurrent use;
// Replace swaps the whole catalog at once.
type Source struct {
	mu      sync.RWMutex
	entries []domain.Result
	limit   int
}

// New creates a source over entries returning at most limit results per
// query (no limit when limit <= 0)
func New(entries []domain.Result, limit int) *Source {
	return &Source{entries: entries, limit: limit}
}

// Open loads the catalog at path
func Open(path string, limit int) (*Source, error) {
	entries, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(entries, limit), nil
}

// Replace swaps in a new catalog
func (s *Source) Replace(entries []domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Len returns the number of entries in the catalog
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

type scored struct {
	result domain.Result
	score  int
	title  bool // matched on the title, not the subtitle
}

// Name identifies the catalog in errors
func (s *Source) Name() string { return name }

// Search ranks catalog entries against query. Title matches outrank
// subtitle matches; ties fall back to title order. A blank query matches
// nothing.
func (s *Source) Search(ctx context.Context, query string) ([]domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, source.Wrap(name, query, err)
	}

	pattern := []rune(strings.ToLower(strings.TrimSpace(query)))
	if len(pattern) == 0 {
		return nil, nil
	}
	prefix := string(pattern)

	s.mu.RLock()
	entries := s.entries
	s.mu.RUnlock()

	var matches []scored
	for _, entry := range entries {
		score := match(entry.Title, pattern)
		title := score > 0
		if title {
			if strings.HasPrefix(strings.ToLower(entry.Title), prefix) {
				score += prefixBonus
			}
		} else if entry.Subtitle != "" {
			score = match(entry.Subtitle, pattern)
		}
		if score > 0 {
			matches = append(matches, scored{result: entry, score: score, title: title})
		}
	}

	// Every title match ranks above every subtitle match
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].title != matches[j].title {
			return matches[i].title
		}
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].result.Title < matches[j].result.Title
	})

	if s.limit > 0 && len(matches) > s.limit {
		matches = matches[:s.limit]
	}

	results := make([]domain.Result, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	return results, nil
}

// match scores text against a lower-cased pattern; 0 means no match
func match(text string, pattern []rune) int {
	chars := util.ToChars([]byte(text))
	result, _ := algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, nil)
	if result.Start < 0 {
		return 0
	}
	return result.Score
}
