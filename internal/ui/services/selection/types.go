package selection

import "typeahead/internal/domain"

// Event types

// ActiveChangedEvent is published when the highlighted result moves
type ActiveChangedEvent struct {
	OldIndex int
	NewIndex int
}

// ResultSelectedEvent carries the result the user picked
type ResultSelectedEvent struct {
	Query  string
	Index  int
	Result domain.Result
}

// ListClosedEvent is published when the result list is dismissed
type ListClosedEvent struct{}
