package navigation

import (
	"typeahead/internal/ui/services/events"
)

// reservedRows is taken by the input line, the status line and the key help
const reservedRows = 4

// Service keeps the highlighted result inside the visible part of the list.
// It never changes the highlight itself; that belongs to selection.
type Service struct {
	state *State
	bus   events.EventBus
}

// NewService creates a new navigation service
func NewService(bus events.EventBus) *Service {
	return &Service{
		state: &State{
			ViewportOffset: 0,
			ViewportHeight: 10, // Default, updated on first resize
		},
		bus: bus,
	}
}

// GetViewportOffset returns current viewport offset
func (s *Service) GetViewportOffset() int {
	return s.state.ViewportOffset
}

// GetViewportHeight returns current viewport height
func (s *Service) GetViewportHeight() int {
	return s.state.ViewportHeight
}

// SetViewportHeight updates the window from the terminal height
func (s *Service) SetViewportHeight(height, active, total int) {
	effectiveHeight := height - reservedRows
	if effectiveHeight < 1 {
		effectiveHeight = 1
	}
	if effectiveHeight == s.state.ViewportHeight {
		return
	}
	s.state.ViewportHeight = effectiveHeight
	s.bus.Publish(ViewportChangedEvent{
		Offset: s.state.ViewportOffset,
		Height: s.state.ViewportHeight,
	})
	s.Follow(active, total)
}

// Follow scrolls so active is visible and the window stays inside
// [0, total). active of -1 only clamps the window.
func (s *Service) Follow(active, total int) {
	offset := s.state.ViewportOffset
	height := s.state.ViewportHeight

	switch {
	case active >= 0 && active < offset:
		offset = active
	case active >= offset+height:
		offset = active - height + 1
	}

	if maxOffset := total - height; offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}

	if offset != s.state.ViewportOffset {
		s.state.ViewportOffset = offset
		s.bus.Publish(ViewportChangedEvent{
			Offset: offset,
			Height: height,
		})
	}
}

// Reset scrolls back to the top, used when a new result set arrives
func (s *Service) Reset() {
	if s.state.ViewportOffset == 0 {
		return
	}
	s.state.ViewportOffset = 0
	s.bus.Publish(ViewportChangedEvent{
		Offset: 0,
		Height: s.state.ViewportHeight,
	})
}

// Window returns the visible slice bounds for a list of total results
func (s *Service) Window(total int) (start, end int) {
	start = s.state.ViewportOffset
	if start > total {
		start = total
	}
	end = start + s.state.ViewportHeight
	if end > total {
		end = total
	}
	return start, end
}

// IndexAtRow maps a row inside the list to a result index
func (s *Service) IndexAtRow(row, total int) (int, bool) {
	if row < 0 || row >= s.state.ViewportHeight {
		return 0, false
	}
	index := s.state.ViewportOffset + row
	if index >= total {
		return 0, false
	}
	return index, true
}
