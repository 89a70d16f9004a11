package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeahead/internal/ui/input/types"
)

type fakeContext struct {
	open   bool
	failed bool
	leave  bool
}

func (c fakeContext) ListOpen() bool { return c.open }
func (c fakeContext) HasError() bool { return c.failed }
func (c fakeContext) CanLeave() bool { return c.leave }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTypingProducesTextUpdates(t *testing.T) {
	h := New("search")

	var texts []string
	for _, r := range "go" {
		actions, _ := h.HandleKey(runes(string(r)), fakeContext{})
		require.Len(t, actions, 1)
		texts = append(texts, actions[0].(types.UpdateTextAction).Text)
	}
	assert.Equal(t, []string{"g", "go"}, texts)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace}, fakeContext{})
	require.Len(t, actions, 1)
	assert.Equal(t, types.UpdateTextAction{Text: "g"}, actions[0])
}

func TestCursorMovementIsNotATextChange(t *testing.T) {
	h := New("search")
	h.HandleKey(runes("go"), fakeContext{})

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyLeft}, fakeContext{})
	assert.Empty(t, actions)
}

func TestNavigationKeys(t *testing.T) {
	h := New("search")
	tests := []struct {
		msg  tea.KeyMsg
		want types.Action
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, types.NavigateAction{Direction: "down"}},
		{tea.KeyMsg{Type: tea.KeyCtrlN}, types.NavigateAction{Direction: "down"}},
		{tea.KeyMsg{Type: tea.KeyTab}, types.NavigateAction{Direction: "down"}},
		{tea.KeyMsg{Type: tea.KeyUp}, types.NavigateAction{Direction: "up"}},
		{tea.KeyMsg{Type: tea.KeyCtrlP}, types.NavigateAction{Direction: "up"}},
		{tea.KeyMsg{Type: tea.KeyEnter}, types.SelectAction{}},
		{tea.KeyMsg{Type: tea.KeyF1}, types.ToggleHelpAction{}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.QuitAction{Force: true}},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			actions, _ := h.HandleKey(tt.msg, fakeContext{open: true})
			require.Len(t, actions, 1)
			assert.Equal(t, tt.want, actions[0])
		})
	}
	assert.Empty(t, h.Value(), "bound keys never reach the text input")
}

func TestEscapeClosesThenQuits(t *testing.T) {
	h := New("search")
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	actions, _ := h.HandleKey(esc, fakeContext{open: true})
	assert.Equal(t, []types.Action{types.CloseAction{}}, actions)

	actions, _ = h.HandleKey(esc, fakeContext{open: false, leave: true})
	assert.Equal(t, []types.Action{types.QuitAction{}}, actions)
}

func TestEscapeWhileSearchingDoesNothing(t *testing.T) {
	h := New("search")
	h.HandleKey(runes("go"), fakeContext{})

	actions, cmd := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, fakeContext{})
	assert.Empty(t, actions)
	assert.Nil(t, cmd)
	assert.Equal(t, "go", h.Value())
}

func TestRetryOnlyWhenFailed(t *testing.T) {
	h := New("search")
	ctrlR := tea.KeyMsg{Type: tea.KeyCtrlR}

	actions, _ := h.HandleKey(ctrlR, fakeContext{})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(ctrlR, fakeContext{failed: true})
	assert.Equal(t, []types.Action{types.RetryAction{}}, actions)
}

func TestClearEmptiesInput(t *testing.T) {
	h := New("search")
	h.HandleKey(runes("golang"), fakeContext{})
	require.Equal(t, "golang", h.Value())

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlU}, fakeContext{})
	assert.Equal(t, []types.Action{types.ClearAction{}, types.UpdateTextAction{Text: ""}}, actions)
	assert.Empty(t, h.Value())
}

func TestKeyMapHelp(t *testing.T) {
	k := DefaultKeyMap()
	assert.Len(t, k.ShortHelp(), 5)
	assert.Len(t, k.FullHelp(), 3)
}
