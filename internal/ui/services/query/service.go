package query

import (
	"context"
	"log"
	"strings"
	"time"

	"typeahead/internal/clock"
	"typeahead/internal/debounce"
	"typeahead/internal/source"
	"typeahead/internal/ui/services/events"
	"typeahead/internal/ui/state"
)

// DefaultTimeout bounds a search when the caller does not choose one
const DefaultTimeout = 10 * time.Second

// Options configures a Service
type Options struct {
	Clock       clock.Clock
	Delay       time.Duration
	ErrorPolicy ErrorPolicy
}

// Service coordinates input text, debouncing and search results. It
// stamps every issued search with an increasing sequence number and commits
// a response only if it carries the latest stamp, so a slow answer for an
// older query can never overwrite a newer one.
//
// Service is not safe for concurrent use. All methods are meant to run on
// the UI loop; the debounce timer reports back through the elapsed
// function, which must hand the Pending to Fire on that loop.
type Service struct {
	session   *state.Session
	bus       events.EventBus
	debouncer *debounce.Debouncer[Pending]
	policy    ErrorPolicy
	elapsedFn func(Pending)

	gen      uint64 // latest keystroke
	issued   uint64 // latest sequence number handed out
	inflight uint64 // sequence number awaiting a response, 0 if none
}

// NewService creates a query coordinator over session
func NewService(session *state.Session, bus events.EventBus, opts Options) *Service {
	if opts.ErrorPolicy == "" {
		opts.ErrorPolicy = ErrorPolicyClear
	}
	s := &Service{
		session: session,
		bus:     bus,
		policy:  opts.ErrorPolicy,
	}
	s.debouncer = debounce.New(opts.Clock, opts.Delay, s.elapsed)
	return s
}

// SetElapsedFunction sets where debounced keystrokes are delivered
func (s *Service) SetElapsedFunction(fn func(Pending)) {
	s.elapsedFn = fn
}

// Input records the current text of the input. Empty text resets to idle
// at once; anything else restarts the debounce period.
func (s *Service) Input(text string) {
	if text == s.session.Query {
		return
	}
	s.gen++

	if strings.TrimSpace(text) == "" {
		s.debouncer.Cancel()
		if s.inflight != 0 {
			log.Printf("Search cleared, superseding request #%d", s.inflight)
		}
		s.inflight = 0
		s.session.Reset()
		s.session.Query = text
		s.publishState()
		return
	}

	s.session.Query = text
	s.session.Phase = state.PhaseDebouncing
	s.session.Loading = false
	s.session.Err = nil
	s.inflight = 0
	s.debouncer.Call(Pending{Text: text, Gen: s.gen})
	s.publishState()
}

// Fire issues the search for a debounced keystroke. It reports false when
// the keystroke has since been superseded.
func (s *Service) Fire(p Pending) (Request, bool) {
	if p.Gen != s.gen || s.session.Phase != state.PhaseDebouncing {
		return Request{}, false
	}
	return s.issue(p.Text), true
}

// Retry issues the current query again under a fresh sequence number. Only
// valid after a failed search.
func (s *Service) Retry() (Request, bool) {
	if s.session.Phase != state.PhaseError || strings.TrimSpace(s.session.Query) == "" {
		return Request{}, false
	}
	log.Printf("Retrying search for '%s'", s.session.Query)
	return s.issue(s.session.Query), true
}

// Resolve commits resp if it answers the latest request and drops it
// otherwise. Errors become the Error phase; they never escape.
func (s *Service) Resolve(resp Response) Outcome {
	if resp.Seq == 0 || resp.Seq != s.inflight || s.session.Phase != state.PhaseLoading {
		log.Printf("Discarding stale response #%d for '%s' (latest #%d)", resp.Seq, resp.Query, s.issued)
		s.bus.Publish(StaleResponseDiscardedEvent{Seq: resp.Seq, Latest: s.issued, Query: resp.Query})
		return OutcomeStale
	}

	s.inflight = 0
	s.session.Loading = false

	if resp.Err != nil {
		err := source.Wrap(source.DefaultName, resp.Query, resp.Err)
		log.Printf("Search #%d for '%s' failed: %v", resp.Seq, resp.Query, err)
		s.session.Phase = state.PhaseError
		s.session.Err = err
		if s.policy == ErrorPolicyClear {
			s.session.ClearResults()
			s.session.Open = false
		}
		s.bus.Publish(SearchFailedEvent{Request: Request{Seq: resp.Seq, Query: resp.Query}, Err: err})
		s.publishState()
		return OutcomeFailed
	}

	log.Printf("Search #%d completed for '%s': found %d results", resp.Seq, resp.Query, len(resp.Results))
	s.session.Phase = state.PhaseReady
	s.session.Err = nil
	s.session.Results = resp.Results
	s.session.Active = -1
	s.session.Open = true
	s.publishState()
	return OutcomeApplied
}

// Close cancels the pending debounce and supersedes any in-flight request.
// Owners call it on teardown.
func (s *Service) Close() {
	s.debouncer.Cancel()
	s.inflight = 0
	s.session.Loading = false
}

// Latest returns the most recently issued sequence number
func (s *Service) Latest() uint64 {
	return s.issued
}

// Phase returns the current pipeline phase
func (s *Service) Phase() state.Phase {
	return s.session.Phase
}

// Policy returns the configured error policy
func (s *Service) Policy() ErrorPolicy {
	return s.policy
}

// Delay returns the debounce period
func (s *Service) Delay() time.Duration {
	return s.debouncer.Delay()
}

func (s *Service) issue(text string) Request {
	s.issued++
	s.inflight = s.issued
	s.session.Phase = state.PhaseLoading
	s.session.Loading = true
	s.session.Err = nil

	req := Request{Seq: s.issued, Query: text}
	s.bus.Publish(QueryIssuedEvent{Request: req})
	s.publishState()
	return req
}

func (s *Service) elapsed(p Pending) {
	if s.elapsedFn == nil {
		log.Printf("Debounced query '%s' dropped: no elapsed function", p.Text)
		return
	}
	s.elapsedFn(p)
}

func (s *Service) publishState() {
	s.bus.Publish(StateChangedEvent{State: s.session.Snapshot()})
}

// Execute runs req against searcher, bounded by timeout, and packages the
// outcome as a Response. Every failure is a *source.SourceError.
func Execute(ctx context.Context, searcher source.Searcher, req Request, timeout time.Duration) Response {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	results, err := source.WithTimeout(searcher, timeout).Search(ctx, req.Query)
	return Response{
		Seq:     req.Seq,
		Query:   req.Query,
		Results: results,
		Err:     source.Wrap(source.NameOf(searcher), req.Query, err),
	}
}
