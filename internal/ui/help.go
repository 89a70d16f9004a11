package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"typeahead/internal/ui/input"
)

var (
	helpTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1)
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1)
	helpKeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(24)
	helpDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpNoteStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

// helpLine is one row of the help page
type helpLine struct {
	keys string
	desc string
}

func bindingLine(b key.Binding) helpLine {
	return helpLine{keys: strings.Join(b.Keys(), ", "), desc: b.Help().Desc}
}

// helpContent builds the full help page shown in the pager
func helpContent(keys input.KeyMap, debounce time.Duration, sourceName string) string {
	sections := []struct {
		name  string
		lines []helpLine
	}{
		{"Navigation", []helpLine{bindingLine(keys.Up), bindingLine(keys.Down), bindingLine(keys.Enter), bindingLine(keys.Close)}},
		{"Search", []helpLine{bindingLine(keys.Retry), bindingLine(keys.Clear)}},
		{"Other", []helpLine{bindingLine(keys.Help), bindingLine(keys.Quit)}},
		{"Mouse", []helpLine{
			{keys: "hover", desc: "Highlight a result"},
			{keys: "click", desc: "Select a result"},
			{keys: "wheel", desc: "Move the highlight"},
		}},
	}

	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("typeahead Help"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString(helpSectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, l := range s.lines {
			fmt.Fprintf(&b, "  %s %s\n", helpKeyStyle.Render(l.keys), helpDescStyle.Render(l.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(helpNoteStyle.Render(fmt.Sprintf("  Searches %s once you stop typing for %s.", sourceName, debounce)))
	b.WriteString("\n")
	b.WriteString(helpNoteStyle.Render("  Press q to close this help."))
	return b.String()
}

var errNoProgram = errors.New("program not set")

// pager shows text in ov while the program's terminal is released
type pager struct {
	program *tea.Program
}

func (p *pager) show(content string) error {
	if p.program == nil {
		return errNoProgram
	}
	if err := p.program.ReleaseTerminal(); err != nil {
		return fmt.Errorf("release terminal: %w", err)
	}
	defer func() {
		// ov needs a moment to leave the alternate screen
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("open pager: %w", err)
	}
	cfg := oviewer.NewConfig()
	cfg.IsWriteOnExit = false
	cfg.IsWriteOriginal = false
	root.SetConfig(cfg)

	return root.Run()
}
