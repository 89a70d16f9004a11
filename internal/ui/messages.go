package ui

import (
	"typeahead/internal/eventbus"
	"typeahead/internal/ui/services/query"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// debounceFiredMsg carries a keystroke whose debounce period elapsed
type debounceFiredMsg struct {
	pending query.Pending
}

// searchResultMsg contains the outcome of a search command
type searchResultMsg struct {
	response query.Response
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
