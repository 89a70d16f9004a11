package ui

import (
	"context"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"typeahead/internal/clock"
	"typeahead/internal/config"
	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
	"typeahead/internal/source"
	"typeahead/internal/ui/coordinator"
	"typeahead/internal/ui/input"
	inputtypes "typeahead/internal/ui/input/types"
	"typeahead/internal/ui/services/events"
	"typeahead/internal/ui/services/query"
	"typeahead/internal/ui/services/selection"
	"typeahead/internal/ui/state"
	"typeahead/internal/ui/views"
)

// Option configures a Model
type Option func(*Model)

// WithClock sets the clock behind the debounce timer
func WithClock(c clock.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// Model represents the UI state
type Model struct {
	bus      eventbus.EventBus // application bus, may be nil
	config   *config.Config
	searcher source.Searcher
	clock    clock.Clock

	// Query pipeline
	session   *state.Session
	events    *events.Bus
	coord     *coordinator.Coordinator
	query     *query.Service
	selection *selection.Service

	// UI-specific state
	width       int
	height      int
	help        help.Model
	spinner     spinner.Model
	spinning    bool
	inPagerMode bool
	chosen      *domain.Result

	renderer     *views.Renderer
	inputHandler *input.Handler
	pager        *pager

	// In-flight searches are cancelled when the model quits
	ctx    context.Context
	cancel context.CancelFunc

	// send posts a message into the running program from any goroutine
	send    func(tea.Msg)
	program *tea.Program
}

// NewModel creates a new UI model searching with searcher
func NewModel(bus eventbus.EventBus, cfg *config.Config, searcher source.Searcher, opts ...Option) *Model {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		bus:          bus,
		config:       cfg,
		searcher:     searcher,
		session:      state.NewSession(),
		events:       events.NewBus(),
		help:         help.New(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		renderer:     views.NewRenderer(cfg.UI.ShowSubtitles),
		inputHandler: input.New(cfg.UI.Placeholder),
		pager:        &pager{},
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.coord = coordinator.NewCoordinator(m.session, m.events, query.Options{
		Clock:       m.clock,
		Delay:       cfg.Search.Debounce(),
		ErrorPolicy: query.ErrorPolicy(cfg.Search.ErrorPolicy),
	})
	m.query = m.coord.Query
	m.query.SetElapsedFunction(m.debounceElapsed)
	m.selection = m.coord.Selection

	return m
}

// SetProgram sets the program reference for terminal management and for
// delivering debounce timers back into the update loop
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.send = p.Send
	m.pager.program = p
}

// SetSender replaces how timer callbacks reach the update loop
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Events returns the bus the query pipeline publishes its state on
func (m *Model) Events() events.EventBus {
	return m.events
}

// Session returns the live autocomplete state. Read it only from the
// update loop.
func (m *Model) Session() *state.Session {
	return m.session
}

// Chosen returns the result the user picked, if any
func (m *Model) Chosen() (domain.Result, bool) {
	if m.chosen == nil {
		return domain.Result{}, false
	}
	return *m.chosen, true
}

// Close stops the debounce timer and cancels in-flight searches
func (m *Model) Close() {
	m.query.Close()
	m.cancel()
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.inputHandler.SetWidth(msg.Width - 6)
		m.coord.SetViewportHeight(msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}

		actions, cmd := m.inputHandler.HandleKey(msg, m)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	default:
		return m.handleNonKeyboardMsg(msg)
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	visible, offset := m.coord.VisibleResults()
	return m.renderer.Render(views.ViewState{
		Width:       m.width,
		Height:      m.height,
		Input:       m.inputHandler.TextInput().View(),
		Spinner:     m.spinner.View(),
		Phase:       m.session.Phase,
		Query:       m.session.Query,
		Results:     visible,
		Offset:      offset,
		Total:       len(m.session.Results),
		ActiveIndex: m.session.Active,
		Open:        m.session.Open,
		Err:         m.session.Err,
		HelpView:    m.help.View(m.inputHandler.Keys()),
	})
}

// ListOpen implements inputtypes.Context. An open list with no rows
// still counts so Escape can dismiss "no results".
func (m *Model) ListOpen() bool {
	return m.session.Open
}

// CanLeave implements inputtypes.Context
func (m *Model) CanLeave() bool {
	switch m.session.Phase {
	case state.PhaseIdle:
		return true
	case state.PhaseReady:
		return !m.session.Open
	}
	return false
}

// HasError implements inputtypes.Context
func (m *Model) HasError() bool {
	return m.session.Phase == state.PhaseError
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.UpdateTextAction:
		m.query.Input(a.Text)
		return nil

	case inputtypes.NavigateAction:
		if a.Direction == "up" {
			m.selection.Previous()
		} else {
			m.selection.Next()
		}
		return nil

	case inputtypes.SelectAction:
		return m.choose(m.selection.Select())

	case inputtypes.CloseAction:
		m.selection.Close()
		return nil

	case inputtypes.RetryAction:
		if req, ok := m.query.Retry(); ok {
			return m.search(req)
		}
		return nil

	case inputtypes.ClearAction:
		// The text change that follows resets the session
		return nil

	case inputtypes.ToggleHelpAction:
		return m.fetchHelpPager()

	case inputtypes.QuitAction:
		m.Close()
		return tea.Quit

	default:
		log.Printf("Unhandled action %s", action.Type())
		return nil
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.config.UI.Mouse || m.inPagerMode || !m.session.Visible() {
		return nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.selection.Previous()
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		m.selection.Next()
		return nil
	}

	index, ok := m.coord.ResultAtRow(msg.Y - views.ListTop)
	if !ok {
		return nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.selection.Hover(index)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.choose(m.selection.SelectIndex(index))
	}
	return nil
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceFiredMsg:
		req, ok := m.query.Fire(msg.pending)
		if !ok {
			return m, nil
		}
		return m, m.search(req)

	case searchResultMsg:
		m.query.Resolve(msg.response)
		return m, nil

	case spinner.TickMsg:
		if !m.session.Loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			// Pager failed: log only; do not surface in status bar
			log.Printf("Help pager failed: %v", msg.err)
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	default:
		// Cursor blink and other text input messages
		return m, m.inputHandler.Update(msg)
	}
}

// handleEvent processes application events forwarded by main
func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.CatalogReloadedEvent:
		log.Printf("Catalog reloaded (%d entries); results refresh on the next search", e.Entries)
	case eventbus.CatalogErrorEvent:
		log.Printf("Catalog %s could not be reloaded: %v", e.Path, e.Err)
	}
}

// search returns a command that runs req and reports back with its sequence number
func (m *Model) search(req query.Request) tea.Cmd {
	ctx, searcher, timeout := m.ctx, m.searcher, m.config.Search.Timeout()
	cmds := []tea.Cmd{func() tea.Msg {
		return searchResultMsg{response: query.Execute(ctx, searcher, req, timeout)}
	}}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// choose records a selection and, if configured, ends the program
func (m *Model) choose(result domain.Result, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	m.chosen = &result
	log.Printf("Selected '%s' (%s) for query '%s'", result.Title, result.ID, m.session.Query)

	if m.bus != nil {
		m.bus.Publish(eventbus.ResultChosenEvent{Query: m.session.Query, Result: result})
	}

	if m.config.UI.ExitOnSelect {
		m.Close()
		return tea.Quit
	}
	m.selection.Close()
	return nil
}

// debounceElapsed runs on the timer goroutine; it only hands the keystroke
// to the update loop
func (m *Model) debounceElapsed(p query.Pending) {
	if m.send == nil {
		log.Printf("Debounced query '%s' dropped: program not running", p.Text)
		return
	}
	m.send(debounceFiredMsg{pending: p})
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager() tea.Cmd {
	if m.program == nil {
		return nil
	}
	content := helpContent(m.inputHandler.Keys(), m.query.Delay(), m.sourceName())
	return func() tea.Msg {
		// Send pause message to stop rendering
		m.program.Send(pauseRenderingMsg{})

		err := m.pager.show(content)

		// Send resume message to restart rendering
		m.program.Send(resumeRenderingMsg{})

		return helpPagerMsg{err: err}
	}
}

func (m *Model) sourceName() string {
	if m.config.Source.Kind == config.SourceHTTP {
		return m.config.Source.URL
	}
	return "the catalog"
}
