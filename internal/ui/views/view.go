package views

import (
	"fmt"
	"strings"

	"typeahead/internal/domain"
	"typeahead/internal/ui/state"
)

// ListTop is the screen row of the first result
const ListTop = 1

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Input       string // rendered text input
	Spinner     string // rendered spinner frame
	Phase       state.Phase
	Query       string
	Results     []domain.Result // the visible window only
	Offset      int             // index of Results[0] in the full list
	Total       int             // length of the full list
	ActiveIndex int
	Open        bool
	Err         error
	HelpView    string
}

// Renderer handles all view rendering
type Renderer struct {
	styles       *Styles
	resultRender *ResultRenderer
}

// NewRenderer creates a new renderer
func NewRenderer(showSubtitles bool) *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:       styles,
		resultRender: NewResultRenderer(styles, showSubtitles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(vs ViewState) string {
	content := &strings.Builder{}

	// Input line with loading indicator
	content.WriteString(r.styles.Prompt.Render("> "))
	content.WriteString(vs.Input)
	if vs.Phase == state.PhaseLoading && vs.Spinner != "" {
		content.WriteString(" ")
		content.WriteString(r.styles.StatusLoading.Render(vs.Spinner))
	}
	content.WriteString("\n")

	rowWidth := vs.Width - 2 // Account for main container padding
	if vs.Open {
		for i, result := range vs.Results {
			index := vs.Offset + i
			content.WriteString(r.resultRender.RenderResult(result, index == vs.ActiveIndex, vs.Query, rowWidth))
			content.WriteString("\n")
		}
	}

	if status := r.renderStatus(vs); status != "" {
		content.WriteString(status)
		content.WriteString("\n")
	}

	if vs.HelpView != "" {
		content.WriteString(r.styles.Help.Render(vs.HelpView))
	}

	mainStyle := r.styles.Main
	if vs.Height > 0 {
		mainStyle = mainStyle.MaxHeight(vs.Height)
	}
	return mainStyle.Render(content.String())
}

// renderStatus renders the line under the results
func (r *Renderer) renderStatus(vs ViewState) string {
	switch vs.Phase {
	case state.PhaseError:
		return r.styles.StatusError.Render("couldn't load results") +
			r.styles.Dim.Render(" · ctrl+r to retry")
	case state.PhaseReady:
		if vs.Total == 0 {
			return r.styles.Dim.Render("no results")
		}
		if !vs.Open {
			return r.styles.Dim.Render(fmt.Sprintf("%d results hidden · type to search again", vs.Total))
		}
		if len(vs.Results) < vs.Total {
			return r.styles.Scroll.Render(fmt.Sprintf("%d-%d of %d", vs.Offset+1, vs.Offset+len(vs.Results), vs.Total))
		}
	}
	return ""
}
