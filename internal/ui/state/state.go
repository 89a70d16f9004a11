package state

import (
	"slices"

	"typeahead/internal/domain"
)

// Phase is where the query pipeline currently is
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Session is the mutable autocomplete state. It is written only by the
// query and selection services, both of which run on the UI loop.
type Session struct {
	Phase   Phase
	Query   string          // current input text
	Results []domain.Result // ordered as returned by the source
	Loading bool            // a request is in flight and not superseded
	Err     error           // set in PhaseError
	Active  int             // highlighted result, -1 for none
	Open    bool            // whether the result list is shown
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{Active: -1}
}

// Reset returns the session to idle with no query
func (s *Session) Reset() {
	*s = Session{Active: -1}
}

// ClearResults drops the result list and the highlight
func (s *Session) ClearResults() {
	s.Results = nil
	s.Active = -1
}

// Visible reports whether there is a list the user can navigate
func (s *Session) Visible() bool {
	return s.Open && len(s.Results) > 0
}

// ActiveResult returns the highlighted result
func (s *Session) ActiveResult() (domain.Result, bool) {
	if s.Active < 0 || s.Active >= len(s.Results) {
		return domain.Result{}, false
	}
	return s.Results[s.Active], true
}

// Snapshot is a copy of the session that observers may keep
type Snapshot struct {
	Phase   Phase
	Query   string
	Results []domain.Result
	Loading bool
	Err     error
	Active  int
	Open    bool
}

// Snapshot copies the session
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:   s.Phase,
		Query:   s.Query,
		Results: slices.Clone(s.Results),
		Loading: s.Loading,
		Err:     s.Err,
		Active:  s.Active,
		Open:    s.Open,
	}
}
