package selection

import (
	"typeahead/internal/domain"
	"typeahead/internal/ui/services/events"
	"typeahead/internal/ui/state"
)

// Service moves the highlight over the session's results and turns Enter
// into a selection. Every method is a no-op while the list is empty or
// closed.
type Service struct {
	session *state.Session
	bus     events.EventBus
}

// NewService creates a new selection service
func NewService(session *state.Session, bus events.EventBus) *Service {
	return &Service{
		session: session,
		bus:     bus,
	}
}

// Active returns the highlighted index, -1 for none
func (s *Service) Active() int {
	return s.session.Active
}

// Next moves the highlight down, wrapping from the last result to the first
func (s *Service) Next() bool {
	if !s.session.Visible() {
		return false
	}
	return s.moveTo((s.session.Active + 1) % len(s.session.Results))
}

// Previous moves the highlight up, wrapping from the first result (or
// from no highlight) to the last
func (s *Service) Previous() bool {
	if !s.session.Visible() {
		return false
	}
	if s.session.Active <= 0 {
		return s.moveTo(len(s.session.Results) - 1)
	}
	return s.moveTo(s.session.Active - 1)
}

// Hover highlights index without selecting it
func (s *Service) Hover(index int) bool {
	if !s.session.Visible() || index < 0 || index >= len(s.session.Results) {
		return false
	}
	return s.moveTo(index)
}

// Select emits the highlighted result. Nothing happens when no result is
// highlighted.
func (s *Service) Select() (domain.Result, bool) {
	if !s.session.Visible() {
		return domain.Result{}, false
	}
	result, ok := s.session.ActiveResult()
	if !ok {
		return domain.Result{}, false
	}

	s.bus.Publish(ResultSelectedEvent{
		Query:  s.session.Query,
		Index:  s.session.Active,
		Result: result,
	})
	return result, true
}

// SelectIndex highlights index and selects it, as a mouse click does
func (s *Service) SelectIndex(index int) (domain.Result, bool) {
	if !s.Hover(index) && s.session.Active != index {
		return domain.Result{}, false
	}
	return s.Select()
}

// Close hides the result list. The query text is left alone.
func (s *Service) Close() bool {
	if !s.session.Open {
		return false
	}
	s.session.Open = false
	s.session.Active = -1
	s.bus.Publish(ListClosedEvent{})
	return true
}

func (s *Service) moveTo(index int) bool {
	old := s.session.Active
	if old == index {
		return false
	}
	s.session.Active = index
	s.bus.Publish(ActiveChangedEvent{
		OldIndex: old,
		NewIndex: index,
	})
	return true
}
