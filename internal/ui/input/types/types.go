package types

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input handling
type Context interface {
	// ListOpen reports whether the result list is showing
	ListOpen() bool
	// HasError reports whether the last search failed
	HasError() bool
	// CanLeave reports whether Escape on a closed list may end the
	// program: the input is empty or the user already dismissed results
	CanLeave() bool
}
