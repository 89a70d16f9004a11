package input

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"typeahead/internal/ui/input/types"
)

// Handler turns key presses into actions. Keys it does not bind go to the
// text input, and any change to the text comes back as UpdateTextAction.
type Handler struct {
	keys      KeyMap
	textInput *textinput.Model
}

func New(placeholder string) *Handler {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "" // Prompt is handled in the UI layer
	ti.Focus()

	return &Handler{
		keys:      DefaultKeyMap(),
		textInput: &ti,
	}
}

// HandleKey processes a key message and returns the actions it produced
func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	switch {
	case key.Matches(msg, h.keys.Quit):
		return []types.Action{types.QuitAction{Force: true}}, nil
	case key.Matches(msg, h.keys.Close):
		if ctx.ListOpen() {
			return []types.Action{types.CloseAction{}}, nil
		}
		if ctx.CanLeave() {
			return []types.Action{types.QuitAction{}}, nil
		}
		return nil, nil
	case key.Matches(msg, h.keys.Up):
		return []types.Action{types.NavigateAction{Direction: "up"}}, nil
	case key.Matches(msg, h.keys.Down):
		return []types.Action{types.NavigateAction{Direction: "down"}}, nil
	case key.Matches(msg, h.keys.Enter):
		return []types.Action{types.SelectAction{}}, nil
	case key.Matches(msg, h.keys.Retry):
		if ctx.HasError() {
			return []types.Action{types.RetryAction{}}, nil
		}
		return nil, nil
	case key.Matches(msg, h.keys.Clear):
		h.textInput.Reset()
		return []types.Action{types.ClearAction{}, types.UpdateTextAction{Text: ""}}, nil
	case key.Matches(msg, h.keys.Help):
		return []types.Action{types.ToggleHelpAction{}}, nil
	}

	before := h.textInput.Value()
	var cmd tea.Cmd
	*h.textInput, cmd = h.textInput.Update(msg)
	if after := h.textInput.Value(); after != before {
		return []types.Action{types.UpdateTextAction{Text: after}}, cmd
	}
	return nil, cmd
}

// Update handles non-keyboard messages for text input (cursor blink)
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	*h.textInput, cmd = h.textInput.Update(msg)
	return cmd
}

// Keys returns the key bindings
func (h *Handler) Keys() KeyMap {
	return h.keys
}

// TextInput returns the text input model
func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// Value returns the current input text
func (h *Handler) Value() string {
	return h.textInput.Value()
}

// SetWidth sets the visible width of the input
func (h *Handler) SetWidth(width int) {
	h.textInput.Width = width
}
