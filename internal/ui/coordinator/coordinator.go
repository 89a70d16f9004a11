package coordinator

import (
	"typeahead/internal/domain"
	"typeahead/internal/ui/services/events"
	"typeahead/internal/ui/services/navigation"
	"typeahead/internal/ui/services/query"
	"typeahead/internal/ui/services/selection"
	"typeahead/internal/ui/state"
)

// Coordinator owns the UI services that share one session and keeps them
// in step through the event bus
type Coordinator struct {
	// Services
	Query      *query.Service
	Selection  *selection.Service
	Navigation *navigation.Service

	// Dependencies
	session *state.Session
	bus     events.EventBus
}

// NewCoordinator creates a new coordinator with all services
func NewCoordinator(session *state.Session, bus events.EventBus, opts query.Options) *Coordinator {
	c := &Coordinator{
		Query:      query.NewService(session, bus, opts),
		Selection:  selection.NewService(session, bus),
		Navigation: navigation.NewService(bus),
		session:    session,
		bus:        bus,
	}

	// Subscribe to events
	c.subscribeToEvents()

	return c
}

// subscribeToEvents sets up event handlers
func (c *Coordinator) subscribeToEvents() {
	// Keep the highlighted result on screen
	c.bus.Subscribe(events.TypeOf(selection.ActiveChangedEvent{}), func(e interface{}) {
		event := e.(selection.ActiveChangedEvent)
		c.Navigation.Follow(event.NewIndex, len(c.session.Results))
	})

	// A new result set or a cleared query starts at the top
	c.bus.Subscribe(events.TypeOf(query.StateChangedEvent{}), func(e interface{}) {
		event := e.(query.StateChangedEvent)
		switch event.State.Phase {
		case state.PhaseReady, state.PhaseIdle:
			c.Navigation.Reset()
		}
	})

	c.bus.Subscribe(events.TypeOf(selection.ListClosedEvent{}), func(e interface{}) {
		c.Navigation.Reset()
	})
}

// SetViewportHeight updates viewport height across services
func (c *Coordinator) SetViewportHeight(height int) {
	c.Navigation.SetViewportHeight(height, c.session.Active, len(c.session.Results))
}

// VisibleResults returns the results inside the viewport and the index of
// the first one
func (c *Coordinator) VisibleResults() ([]domain.Result, int) {
	start, end := c.Navigation.Window(len(c.session.Results))
	return c.session.Results[start:end], start
}

// ResultAtRow maps a row of the result list to a result index
func (c *Coordinator) ResultAtRow(row int) (int, bool) {
	return c.Navigation.IndexAtRow(row, len(c.session.Results))
}
