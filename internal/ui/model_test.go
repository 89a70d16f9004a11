package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeahead/internal/clock"
	"typeahead/internal/config"
	"typeahead/internal/domain"
	"typeahead/internal/eventbus"
	"typeahead/internal/source"
	"typeahead/internal/ui/services/query"
	"typeahead/internal/ui/state"
	"typeahead/internal/ui/views"
)

type harness struct {
	t     *testing.T
	clk   *clock.FakeClock
	cfg   *config.Config
	m     *Model
	sent  []tea.Msg
	calls []string
	fail  int // fail this many searches before succeeding
}

func newHarness(t *testing.T, bus eventbus.EventBus, configure ...func(*config.Config)) *harness {
	t.Helper()
	h := &harness{
		t:   t,
		clk: clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		cfg: config.DefaultConfig(),
	}
	for _, fn := range configure {
		fn(h.cfg)
	}

	searcher := source.SearcherFunc(func(ctx context.Context, q string) ([]domain.Result, error) {
		h.calls = append(h.calls, q)
		if h.fail > 0 {
			h.fail--
			return nil, errors.New("connection refused")
		}
		return resultsFor(q), nil
	})

	h.m = NewModel(bus, h.cfg, searcher, WithClock(h.clk))
	h.m.SetSender(func(msg tea.Msg) { h.sent = append(h.sent, msg) })
	t.Cleanup(h.m.Close)
	h.m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func resultsFor(q string) []domain.Result {
	return []domain.Result{
		{ID: q + "-1", Kind: domain.KindText, Title: q + " one"},
		{ID: q + "-2", Kind: domain.KindUser, Title: q + " two"},
		{ID: q + "-3", Kind: domain.KindPage, Title: q + " three"},
	}
}

func (h *harness) press(msg tea.KeyMsg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// elapse advances past the debounce period and returns the commands the
// resulting fires produced, without running them
func (h *harness) elapse() []tea.Cmd {
	h.t.Helper()
	h.clk.Advance(h.cfg.Search.Debounce())
	var cmds []tea.Cmd
	for _, msg := range h.sent {
		_, cmd := h.m.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	h.sent = nil
	return cmds
}

// deliver runs cmd and feeds any search result back into the model
func (h *harness) deliver(cmd tea.Cmd) {
	for _, msg := range run(cmd) {
		if _, ok := msg.(searchResultMsg); ok {
			h.m.Update(msg)
		}
	}
}

// search types text, waits out the debounce and delivers the response
func (h *harness) search(text string) {
	h.t.Helper()
	h.typeText(text)
	cmds := h.elapse()
	require.Len(h.t, cmds, 1)
	h.deliver(cmds[0])
}

// run executes cmd, flattening batches
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func quits(cmd tea.Cmd) bool {
	for _, msg := range run(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestTypingWaitsForDebounce(t *testing.T) {
	h := newHarness(t, nil)

	h.typeText("go")
	s := h.m.Session()
	assert.Equal(t, "go", s.Query)
	assert.Equal(t, state.PhaseDebouncing, s.Phase)
	assert.False(t, s.Loading)
	assert.Empty(t, h.calls)

	h.clk.Advance(h.cfg.Search.Debounce() - time.Millisecond)
	assert.Empty(t, h.sent)

	cmds := h.elapse()
	require.Len(t, cmds, 1, "one search for the whole burst")
	assert.Equal(t, state.PhaseLoading, s.Phase)
	assert.True(t, s.Loading)

	h.deliver(cmds[0])
	assert.Equal(t, []string{"go"}, h.calls)
	assert.Equal(t, state.PhaseReady, s.Phase)
	assert.False(t, s.Loading)
	assert.Equal(t, resultsFor("go"), s.Results)
	assert.Equal(t, -1, s.Active)
}

func TestNavigateAndSelect(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	chosen := make(chan eventbus.ResultChosenEvent, 1)
	bus.Subscribe(eventbus.EventResultChosen, func(e eventbus.DomainEvent) {
		chosen <- e.(eventbus.ResultChosenEvent)
	})

	h := newHarness(t, bus)
	h.search("go")

	h.press(tea.KeyMsg{Type: tea.KeyDown})
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, h.m.Session().Active)
	h.press(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, h.m.Session().Active)
	h.press(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, h.m.Session().Active, "wraps to the last result")

	cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, quits(cmd))

	result, ok := h.m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "go-3", result.ID)

	select {
	case e := <-chosen:
		assert.Equal(t, "go", e.Query)
		assert.Equal(t, "go-3", e.Result.ID)
	case <-time.After(time.Second):
		t.Fatal("ResultChosen not published")
	}
}

func TestEnterWithoutHighlightDoesNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")

	cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, quits(cmd))
	_, ok := h.m.Chosen()
	assert.False(t, ok)
}

func TestSelectWithoutExit(t *testing.T) {
	h := newHarness(t, nil, func(c *config.Config) { c.UI.ExitOnSelect = false })
	h.search("go")

	h.press(tea.KeyMsg{Type: tea.KeyDown})
	cmd := h.press(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, quits(cmd))

	result, ok := h.m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "go-1", result.ID)
	assert.False(t, h.m.Session().Open, "list closes after a pick")
	assert.Equal(t, "go", h.m.Session().Query)
}

func TestOlderResponseArrivingLateIsDiscarded(t *testing.T) {
	h := newHarness(t, nil)

	h.typeText("a")
	first := h.elapse()
	require.Len(t, first, 1)

	h.typeText("b")
	second := h.elapse()
	require.Len(t, second, 1)

	h.deliver(second[0])
	assert.Equal(t, resultsFor("ab"), h.m.Session().Results)

	h.deliver(first[0])
	assert.Equal(t, resultsFor("ab"), h.m.Session().Results, "late answer for 'a' ignored")
	assert.Equal(t, state.PhaseReady, h.m.Session().Phase)
}

func TestLateDebounceFireIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	h.typeText("a")
	h.clk.Advance(h.cfg.Search.Debounce())
	require.Len(t, h.sent, 1)
	late := h.sent[0]
	h.sent = nil

	// The keystroke lands before the loop picks up the fire
	h.typeText("b")
	_, cmd := h.m.Update(late)
	assert.Nil(t, cmd)
	assert.Equal(t, state.PhaseDebouncing, h.m.Session().Phase)

	cmds := h.elapse()
	require.Len(t, cmds, 1)
	h.deliver(cmds[0])
	assert.Equal(t, []string{"ab"}, h.calls)
}

func TestClearReturnsToIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")

	h.typeText("p")
	require.Equal(t, 1, h.clk.Pending())

	h.press(tea.KeyMsg{Type: tea.KeyCtrlU})
	s := h.m.Session()
	assert.Equal(t, state.PhaseIdle, s.Phase)
	assert.Empty(t, s.Query)
	assert.Empty(t, s.Results)
	assert.False(t, s.Loading)
	assert.Zero(t, h.clk.Pending(), "debounce cancelled")
}

func TestBackspaceToEmptyReturnsToIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("g")
	h.press(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, state.PhaseIdle, h.m.Session().Phase)
	assert.Empty(t, h.elapse(), "no search for empty text")
}

func TestEscapeClosesThenQuits(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")
	h.press(tea.KeyMsg{Type: tea.KeyDown})

	cmd := h.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, quits(cmd))
	s := h.m.Session()
	assert.False(t, s.Open)
	assert.Equal(t, -1, s.Active)
	assert.Equal(t, "go", s.Query, "query kept")

	// Navigation is a no-op on a closed list
	h.press(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, -1, s.Active)

	cmd = h.press(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, quits(cmd))
	_, ok := h.m.Chosen()
	assert.False(t, ok)
}

func TestEscapeBeforeResultsKeepsSession(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		phase state.Phase
	}{
		{"debouncing", func(h *harness) { h.typeText("go") }, state.PhaseDebouncing},
		{"loading", func(h *harness) {
			h.typeText("go")
			require.Len(h.t, h.elapse(), 1)
		}, state.PhaseLoading},
		{"error", func(h *harness) {
			h.fail = 1
			h.search("go")
		}, state.PhaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			tt.setup(h)
			require.Equal(t, tt.phase, h.m.Session().Phase)

			for range 2 {
				assert.False(t, quits(h.press(tea.KeyMsg{Type: tea.KeyEsc})))
			}
			assert.Equal(t, tt.phase, h.m.Session().Phase)
			assert.Equal(t, "go", h.m.Session().Query)
		})
	}
}

func TestEscapeOnEmptyInputQuits(t *testing.T) {
	h := newHarness(t, nil)
	assert.True(t, quits(h.press(tea.KeyMsg{Type: tea.KeyEsc})))
}

func TestSearchErrorAndRetry(t *testing.T) {
	h := newHarness(t, nil)
	h.fail = 1
	h.search("go")

	s := h.m.Session()
	assert.Equal(t, state.PhaseError, s.Phase)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Results)
	var srcErr *source.SourceError
	assert.ErrorAs(t, s.Err, &srcErr)
	assert.Contains(t, h.m.View(), "couldn't load results")

	cmd := h.press(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, state.PhaseLoading, s.Phase)
	h.deliver(cmd)

	assert.Equal(t, state.PhaseReady, s.Phase)
	assert.Nil(t, s.Err)
	assert.Equal(t, resultsFor("go"), s.Results)
	assert.Equal(t, []string{"go", "go"}, h.calls)
}

func TestPreservePolicyKeepsResultsOnError(t *testing.T) {
	h := newHarness(t, nil, func(c *config.Config) { c.Search.ErrorPolicy = string(query.ErrorPolicyPreserve) })
	h.search("go")

	h.fail = 1
	h.search("o")

	s := h.m.Session()
	assert.Equal(t, state.PhaseError, s.Phase)
	assert.Equal(t, resultsFor("go"), s.Results)
}

func TestMouseHoverAndClick(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")

	h.m.Update(tea.MouseMsg{X: 4, Y: views.ListTop + 1, Action: tea.MouseActionMotion})
	assert.Equal(t, 1, h.m.Session().Active)

	// Rows past the last result are ignored
	h.m.Update(tea.MouseMsg{X: 4, Y: views.ListTop + 5, Action: tea.MouseActionMotion})
	assert.Equal(t, 1, h.m.Session().Active)

	_, cmd := h.m.Update(tea.MouseMsg{X: 4, Y: views.ListTop + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, quits(cmd))
	result, ok := h.m.Chosen()
	require.True(t, ok)
	assert.Equal(t, "go-3", result.ID)
}

func TestMouseDisabled(t *testing.T) {
	h := newHarness(t, nil, func(c *config.Config) { c.UI.Mouse = false })
	h.search("go")

	h.m.Update(tea.MouseMsg{X: 4, Y: views.ListTop, Action: tea.MouseActionMotion})
	assert.Equal(t, -1, h.m.Session().Active)
}

func TestViewRendersResults(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")
	h.press(tea.KeyMsg{Type: tea.KeyDown})

	out := h.m.View()
	assert.Contains(t, out, "go one")
	assert.Contains(t, out, "go three")
	assert.Contains(t, out, "▸")
}

func TestQuitCancelsPendingDebounce(t *testing.T) {
	h := newHarness(t, nil)
	h.typeText("go")
	require.Equal(t, 1, h.clk.Pending())

	cmd := h.press(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, quits(cmd))
	assert.Zero(t, h.clk.Pending())
}

func TestCatalogEventsDoNotDisturbSession(t *testing.T) {
	h := newHarness(t, nil)
	h.search("go")

	h.m.Update(EventMsg{Event: eventbus.CatalogReloadedEvent{Path: "catalog.yaml", Entries: 3}})
	h.m.Update(EventMsg{Event: eventbus.CatalogErrorEvent{Path: "catalog.yaml", Err: errors.New("bad yaml")}})

	assert.Equal(t, state.PhaseReady, h.m.Session().Phase)
	assert.Len(t, h.m.Session().Results, 3)
}
