package types

// Navigation actions
type NavigateAction struct {
	Direction string // "up" or "down"
}

func (a NavigateAction) Type() string { return "navigate" }

// SelectAction picks the highlighted result
type SelectAction struct{}

func (a SelectAction) Type() string { return "select" }

// CloseAction hides the result list, keeping the query
type CloseAction struct{}

func (a CloseAction) Type() string { return "close" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

// ClearAction empties the input
type ClearAction struct{}

func (a ClearAction) Type() string { return "clear" }

// RetryAction re-issues a failed search
type RetryAction struct{}

func (a RetryAction) Type() string { return "retry" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for Esc on a closed list
}

func (a QuitAction) Type() string { return "quit" }
