package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCatalogReloaded EventType = "CatalogReloaded"
	EventCatalogError    EventType = "CatalogError"
	EventResultChosen    EventType = "ResultChosen"
	EventConfigLoaded    EventType = "ConfigLoaded"
	EventConfigSaved     EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CatalogReloadedEvent is emitted after the catalog file changed and was parsed again
type CatalogReloadedEvent struct {
	Path    string
	Entries int
}

func (e CatalogReloadedEvent) Type() EventType { return EventCatalogReloaded }

// CatalogErrorEvent is emitted when a changed catalog file could not be loaded.
// The previous catalog stays in use.
type CatalogErrorEvent struct {
	Path string
	Err  error
}

func (e CatalogErrorEvent) Type() EventType { return EventCatalogError }

// ResultChosenEvent is emitted when the user picks a result
type ResultChosenEvent struct {
	Query  string
	Result Result
}

func (e ResultChosenEvent) Type() EventType { return EventResultChosen }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
