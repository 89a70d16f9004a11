package views

import (
	"github.com/charmbracelet/lipgloss"

	"typeahead/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Prompt        lipgloss.Style
	Dim           lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	SelectionBg   lipgloss.Style
	Subtitle      lipgloss.Style
	StatusError   lipgloss.Style
	StatusLoading lipgloss.Style
	Badge         lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Prompt:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Dim:           lipgloss.NewStyle().Faint(true),
		Help:          lipgloss.NewStyle().Faint(true),
		Main:          lipgloss.NewStyle().Padding(0, 1),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Subtitle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		Badge:         lipgloss.NewStyle().Bold(true),
	}
}

// GetKindColor returns the badge color for a result kind
func GetKindColor(kind domain.Kind) string {
	switch kind {
	case domain.KindUser:
		return "33" // blue
	case domain.KindPage:
		return "78" // green
	default:
		return "214" // yellow
	}
}
