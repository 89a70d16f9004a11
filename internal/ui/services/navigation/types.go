package navigation

// State holds the scroll window over the result list
type State struct {
	ViewportOffset int // first visible result
	ViewportHeight int // rows available for results
}

// ViewportChangedEvent is published when the window scrolls or resizes
type ViewportChangedEvent struct {
	Offset int
	Height int
}
