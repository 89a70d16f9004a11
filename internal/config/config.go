package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"typeahead/internal/eventbus"
)

// Source kinds
const (
	SourceCatalog = "catalog"
	SourceHTTP    = "http"
)

// Config represents the application configuration
type Config struct {
	Search SearchSettings `toml:"search"`
	Source SourceSettings `toml:"source"`
	UI     UISettings     `toml:"ui"`
}

// SearchSettings controls the query pipeline
type SearchSettings struct {
	DebounceMS  int    `toml:"debounce_ms"`
	TimeoutMS   int    `toml:"timeout_ms"`
	ErrorPolicy string `toml:"error_policy"` // "clear" or "preserve"
	MaxResults  int    `toml:"max_results"`
	CacheSize   int    `toml:"cache_size"` // 0 disables the query cache
}

// Debounce returns the debounce period
func (s SearchSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Timeout returns the per-search timeout
func (s SearchSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// SourceSettings selects where results come from
type SourceSettings struct {
	Kind      string  `toml:"kind"`
	Catalog   string  `toml:"catalog"`
	Watch     bool    `toml:"watch"`
	URL       string  `toml:"url"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 for unlimited
	Burst     int     `toml:"burst"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	Placeholder   string `toml:"placeholder"`
	ExitOnSelect  bool   `toml:"exit_on_select"`
	ShowSubtitles bool   `toml:"show_subtitles"`
	Mouse         bool   `toml:"mouse"`
}

// Validate checks value ranges and cross-field requirements
func (c *Config) Validate() error {
	var errs []error
	if c.Search.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("search.debounce_ms must not be negative, got %d", c.Search.DebounceMS))
	}
	if c.Search.TimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("search.timeout_ms must be positive, got %d", c.Search.TimeoutMS))
	}
	if c.Search.ErrorPolicy != "clear" && c.Search.ErrorPolicy != "preserve" {
		errs = append(errs, fmt.Errorf("search.error_policy must be \"clear\" or \"preserve\", got %q", c.Search.ErrorPolicy))
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults))
	}
	if c.Search.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("search.cache_size must not be negative, got %d", c.Search.CacheSize))
	}

	switch c.Source.Kind {
	case SourceCatalog:
		if c.Source.Catalog == "" {
			errs = append(errs, errors.New("source.catalog is required for the catalog source"))
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			errs = append(errs, errors.New("source.url is required for the http source"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourceCatalog, SourceHTTP, c.Source.Kind))
	}
	if c.Source.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("source.rate_limit must not be negative, got %g", c.Source.RateLimit))
	}

	return errors.Join(errs...)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service for the default location,
// $XDG_CONFIG_HOME/typeahead/config.toml
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "typeahead", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration from the default location. A missing file
// yields the defaults.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cs.publish(eventbus.ConfigLoadedEvent{})
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the default location
func (cs *configService) Path() string {
	return cs.filePath
}

// Save saves the configuration to the default location
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Keys the file
// leaves out keep their default values; unknown keys are an error. A
// relative catalog path is taken relative to the config file.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("failed to parse config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Source.Catalog != "" && !filepath.IsAbs(cfg.Source.Catalog) {
		cfg.Source.Catalog = filepath.Join(filepath.Dir(path), cfg.Source.Catalog)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cs.publish(eventbus.ConfigLoadedEvent{Path: path})
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	// Ensure config directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cs.publish(eventbus.ConfigSavedEvent{Path: path})
	return nil
}

func (cs *configService) publish(event eventbus.DomainEvent) {
	if cs.bus != nil {
		cs.bus.Publish(event)
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Search: SearchSettings{
			DebounceMS:  250,
			TimeoutMS:   10000,
			ErrorPolicy: "clear",
			MaxResults:  10,
			CacheSize:   128,
		},
		Source: SourceSettings{
			Kind:      SourceCatalog,
			Catalog:   "catalog.yaml",
			Watch:     true,
			RateLimit: 20,
			Burst:     5,
		},
		UI: UISettings{
			Placeholder:   "Type to search",
			ExitOnSelect:  true,
			ShowSubtitles: true,
			Mouse:         true,
		},
	}
}
