// typeahead is a terminal autocomplete picker. It searches a local catalog
// or an HTTP endpoint as you type and prints the chosen result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"typeahead/internal/config"
	"typeahead/internal/eventbus"
	"typeahead/internal/source"
	"typeahead/internal/source/cache"
	"typeahead/internal/source/catalog"
	"typeahead/internal/source/remote"
	"typeahead/internal/ui"
	"typeahead/internal/watcher"
)

// errNoSelection ends the program with exit status 1 and no message
var errNoSelection = errors.New("no result selected")

type options struct {
	configPath string
	catalog    string
	url        string
	debounce   time.Duration
	timeout    time.Duration
	logPath    string
	noWatch    bool
	write      bool
}

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errNoSelection) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("typeahead", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: $XDG_CONFIG_HOME/typeahead/config.toml)")
	flagSet.StringVar(&opts.catalog, "catalog", "", "search this catalog file (.yaml, .toml, .json, .jsonc)")
	flagSet.StringVar(&opts.url, "url", "", "search this HTTP endpoint instead of a catalog")
	flagSet.DurationVar(&opts.debounce, "debounce", 0, "wait this long after the last keystroke before searching")
	flagSet.DurationVar(&opts.timeout, "timeout", 0, "give up on a search after this long")
	flagSet.StringVar(&opts.logPath, "log", "typeahead.log", "write the debug log to this file")
	flagSet.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the catalog when it changes")
	flagSet.BoolVar(&opts.write, "write-config", false, "save the effective settings to the config file and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	// Set up logging; the terminal belongs to the TUI
	logFile, err := tea.LogToFile(opts.logPath, "typeahead")
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer logFile.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	bus := eventbus.New()
	defer bus.Close()

	configService := config.NewConfigServiceWithBus(bus)
	cfg, err := loadConfig(configService, opts)
	if err != nil {
		return err
	}
	if opts.write {
		path, err := saveConfig(configService, opts.configPath, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		return nil
	}

	searcher, catalogSource, err := buildSource(cfg)
	if err != nil {
		return err
	}

	cached, err := cache.New(searcher, cfg.Search.CacheSize)
	if err != nil {
		return err
	}

	if catalogSource != nil && cfg.Source.Watch {
		w, err := watcher.New(cfg.Source.Catalog, catalogSource, bus, watcher.WithOnReload(cached.Purge))
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			// Searching still works without reloads
			log.Printf("Catalog watcher not started: %v", err)
		} else {
			defer w.Stop()
		}
	}

	printer := newResultPrinter(os.Stdout)
	bus.Subscribe(eventbus.EventResultChosen, printer.handle)

	uiModel := ui.NewModel(bus, cfg, cached)
	defer uiModel.Close()

	p := tea.NewProgram(uiModel, programOptions(ctx, cfg)...)
	uiModel.SetProgram(p)

	// Forward watcher events to the UI without blocking the bus
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	bus.Subscribe(eventbus.EventCatalogReloaded, forwardEvent)
	bus.Subscribe(eventbus.EventCatalogError, forwardEvent)
	go func() {
		for {
			select {
			case event := <-eventChan:
				p.Send(ui.EventMsg{Event: event})
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("Starting with %s source, debounce %s, timeout %s", cfg.Source.Kind, cfg.Search.Debounce(), cfg.Search.Timeout())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}

	if result, ok := uiModel.Chosen(); ok {
		log.Printf("Exiting after choosing '%s' (%s)", result.Title, result.ID)
	}

	// Delivers the queued selections to the printer
	bus.Close()
	return printer.done()
}

// resultPrinter writes every chosen result to stdout as a line of JSON
type resultPrinter struct {
	mu    sync.Mutex
	enc   *json.Encoder
	count int
	err   error
}

func newResultPrinter(w io.Writer) *resultPrinter {
	return &resultPrinter{enc: json.NewEncoder(w)}
}

func (p *resultPrinter) handle(e eventbus.DomainEvent) {
	chosen, ok := e.(eventbus.ResultChosenEvent)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	if err := p.enc.Encode(chosen.Result); err != nil {
		p.err = fmt.Errorf("could not write result: %w", err)
		return
	}
	p.count++
}

// done reports errNoSelection when nothing was printed
func (p *resultPrinter) done() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.count == 0 {
		return errNoSelection
	}
	return nil
}

// programOptions sets up the terminal. The TUI draws on stderr because
// stdout carries the result.
func programOptions(ctx context.Context, cfg *config.Config) []tea.ProgramOption {
	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	}
	if cfg.UI.Mouse {
		// Hover needs motion reports with no button held
		opts = append(opts, tea.WithMouseAllMotion())
	}
	return opts
}

// saveConfig writes cfg to path, or to the default location when path is
// empty, and returns where it went. A relative catalog is saved as an
// absolute path since the file resolves it against its own directory.
func saveConfig(svc config.ConfigService, path string, cfg *config.Config) (string, error) {
	if cfg.Source.Catalog != "" && !filepath.IsAbs(cfg.Source.Catalog) {
		abs, err := filepath.Abs(cfg.Source.Catalog)
		if err != nil {
			return "", fmt.Errorf("could not resolve catalog path: %w", err)
		}
		cfg.Source.Catalog = abs
	}
	if path == "" {
		return svc.Path(), svc.Save(cfg)
	}
	return path, svc.SaveToPath(cfg, path)
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig(svc config.ConfigService, opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		if _, statErr := os.Stat(opts.configPath); opts.write && errors.Is(statErr, fs.ErrNotExist) {
			// --write-config may create the file
			cfg = config.DefaultConfig()
		} else {
			cfg, err = svc.LoadFromPath(opts.configPath)
		}
	} else {
		cfg, err = svc.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.catalog != "" {
		cfg.Source.Kind = config.SourceCatalog
		cfg.Source.Catalog = opts.catalog
	}
	if opts.url != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.URL = opts.url
	}
	if opts.debounce > 0 {
		cfg.Search.DebounceMS = int(opts.debounce / time.Millisecond)
	}
	if opts.timeout > 0 {
		cfg.Search.TimeoutMS = int(opts.timeout / time.Millisecond)
	}
	if opts.noWatch {
		cfg.Source.Watch = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// buildSource creates the configured searcher. The catalog source is also
// returned so the watcher can reload it.
func buildSource(cfg *config.Config) (source.Searcher, *catalog.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		client, err := remote.New(cfg.Source.URL, cfg.Search.MaxResults,
			remote.WithRateLimit(cfg.Source.RateLimit, cfg.Source.Burst))
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		src, err := catalog.Open(cfg.Source.Catalog, cfg.Search.MaxResults)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Loaded catalog %s: %d entries", cfg.Source.Catalog, src.Len())
		return src, src, nil
	}
}
