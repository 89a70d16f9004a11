package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"typeahead/internal/domain"
)

// ResultRenderer handles rendering of a single result row
type ResultRenderer struct {
	styles        *Styles
	showSubtitles bool
}

// NewResultRenderer creates a new result renderer
func NewResultRenderer(styles *Styles, showSubtitles bool) *ResultRenderer {
	return &ResultRenderer{
		styles:        styles,
		showSubtitles: showSubtitles,
	}
}

// RenderResult renders one result on one line. Rows never wrap, so a mouse
// row always maps to exactly one result.
func (r *ResultRenderer) RenderResult(result domain.Result, isActive bool, query string, width int) string {
	bg := lipgloss.NewStyle()
	if isActive {
		bg = r.styles.SelectionBg
	}

	marker := "  "
	if isActive {
		marker = "▸ "
	}

	badgeStyle := r.styles.Badge.Foreground(lipgloss.Color(GetKindColor(result.Kind))).Inherit(bg)
	title := r.highlightMatch(result.Title, query, r.styles.Highlight.Inherit(bg), bg)

	parts := []string{
		bg.Render(marker),
		badgeStyle.Render(result.Kind.Badge()),
		bg.Render(" "),
		title,
	}
	if r.showSubtitles && result.Subtitle != "" {
		parts = append(parts, bg.Render("  "), r.styles.Subtitle.Inherit(bg).Render(result.Subtitle))
	}

	line := strings.Join(parts, "")
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
		if isActive {
			// Extend the selection background to the full row
			if pad := width - lipgloss.Width(line); pad > 0 {
				line += bg.Render(strings.Repeat(" ", pad))
			}
		}
	}
	return line
}

// highlightMatch highlights the first case-insensitive occurrence of query
func (r *ResultRenderer) highlightMatch(text, query string, highlightStyle, normalStyle lipgloss.Style) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return normalStyle.Render(text)
	}

	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	index := strings.Index(lowerText, lowerQuery)
	// ToLower can change byte lengths for some scripts; only slice when it did not
	if index == -1 || len(lowerText) != len(text) {
		return normalStyle.Render(text)
	}

	before := text[:index]
	match := text[index : index+len(query)]
	after := text[index+len(query):]

	var result []string
	if before != "" {
		result = append(result, normalStyle.Render(before))
	}
	result = append(result, highlightStyle.Render(match))
	if after != "" {
		result = append(result, normalStyle.Render(after))
	}

	return strings.Join(result, "")
}
