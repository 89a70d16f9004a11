// Package source defines the search capability the query pipeline depends
// on and the error every implementation reports failures with.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"typeahead/internal/domain"
)

// Searcher returns ranked results for a query. Implementations make no
// ordering promise between concurrent calls; callers that care about
// ordering must stamp their own requests.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.Result, error)
}

// SearcherFunc adapts a function to Searcher
type SearcherFunc func(ctx context.Context, query string) ([]domain.Result, error)

func (f SearcherFunc) Search(ctx context.Context, query string) ([]domain.Result, error) {
	return f(ctx, query)
}

// DefaultName labels errors from searchers that do not name themselves
const DefaultName = "search"

// Named is implemented by searchers that identify themselves in errors
type Named interface {
	Name() string
}

// NameOf returns s's name, or DefaultName
func NameOf(s Searcher) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return DefaultName
}

// SourceError reports that a source could not produce results: it was
// unreachable, too slow, or answered with something unreadable. It is
// always recoverable from the caller's point of view.
type SourceError struct {
	Source  string
	Query   string
	Err     error
	timeout bool
}

func (e *SourceError) Error() string {
	if e.timeout {
		return fmt.Sprintf("%s source timed out for %q", e.Source, e.Query)
	}
	return fmt.Sprintf("%s source failed for %q: %v", e.Source, e.Query, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Timeout reports whether the search was abandoned because it ran too long
func (e *SourceError) Timeout() bool { return e.timeout }

// Wrap turns err into a *SourceError for the named source. Errors that
// already are SourceErrors pass through; deadline errors are marked as
// timeouts. Wrap(nil) is nil.
func Wrap(name, query string, err error) error {
	if err == nil {
		return nil
	}
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return err
	}
	return &SourceError{
		Source:  name,
		Query:   query,
		Err:     err,
		timeout: errors.Is(err, context.DeadlineExceeded),
	}
}

// AsSourceError returns the SourceError in err's chain, if any
func AsSourceError(err error) (*SourceError, bool) {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr, true
	}
	return nil, false
}

// WithTimeout bounds every search made through s. A non-positive d
// returns s unchanged.
func WithTimeout(s Searcher, d time.Duration) Searcher {
	if d <= 0 {
		return s
	}
	return &timeoutSearcher{next: s, d: d}
}

type timeoutSearcher struct {
	next Searcher
	d    time.Duration
}

func (t *timeoutSearcher) Name() string { return NameOf(t.next) }

func (t *timeoutSearcher) Search(ctx context.Context, query string) ([]domain.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	type outcome struct {
		results []domain.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := t.next.Search(ctx, query)
		done <- outcome{results, err}
	}()

	// Sources that ignore ctx still cannot hold the caller past d.
	select {
	case out := <-done:
		if out.err != nil && ctx.Err() != nil {
			return nil, Wrap(t.Name(), query, ctx.Err())
		}
		return out.results, out.err
	case <-ctx.Done():
		return nil, Wrap(t.Name(), query, ctx.Err())
	}
}
