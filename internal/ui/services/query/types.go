package query

import (
	"typeahead/internal/domain"
	"typeahead/internal/ui/state"
)

// ErrorPolicy decides what happens to the results on screen when a search fails
type ErrorPolicy string

const (
	ErrorPolicyClear    ErrorPolicy = "clear"    // drop the previous results
	ErrorPolicyPreserve ErrorPolicy = "preserve" // keep showing them under the error
)

// Valid reports whether p is a known policy
func (p ErrorPolicy) Valid() bool {
	return p == ErrorPolicyClear || p == ErrorPolicyPreserve
}

// Pending is a keystroke waiting out the debounce period. Gen identifies
// the keystroke so a late timer for superseded text is ignored.
type Pending struct {
	Text string
	Gen  uint64
}

// Request is a search stamped with its sequence number
type Request struct {
	Seq   uint64
	Query string
}

// Response is what came back for a Request
type Response struct {
	Seq     uint64
	Query   string
	Results []domain.Result
	Err     error
}

// Outcome is what Resolve did with a response
type Outcome int

const (
	OutcomeApplied Outcome = iota // results committed, phase is Ready
	OutcomeFailed                 // error committed, phase is Error
	OutcomeStale                  // superseded, nothing changed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	default:
		return "stale"
	}
}

// Event types

// StateChangedEvent carries the session after every query transition
type StateChangedEvent struct {
	State state.Snapshot
}

// QueryIssuedEvent is published when a search leaves the coordinator
type QueryIssuedEvent struct {
	Request Request
}

// StaleResponseDiscardedEvent records a response that lost to a newer
// request. It is bookkeeping only and is never shown to the user.
type StaleResponseDiscardedEvent struct {
	Seq    uint64
	Latest uint64
	Query  string
}

// SearchFailedEvent is published when the latest request failed
type SearchFailedEvent struct {
	Request Request
	Err     error
}
