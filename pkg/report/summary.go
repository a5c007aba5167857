// Package report renders the end-of-run summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/processing"
)

const (
	glyphPassed  = "✓"
	glyphFailed  = "✗"
	glyphSkipped = "○"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

// StepOrder is the order statuses are listed in.
var StepOrder = []api.StepStatus{
	api.StepSucceeded,
	api.StepFailedAssertion,
	api.StepFailedAPIError,
	api.StepSkippedMissingDependency,
	api.StepSkippedMissingConfiguration,
	api.StepSkippedUnknownCallType,
}

type styles struct {
	title, passed, failed, skipped, dim, panel lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		passed:  r.NewStyle().Foreground(colorGreen),
		failed:  r.NewStyle().Foreground(colorRed),
		skipped: r.NewStyle().Foreground(colorYellow),
		dim:     r.NewStyle().Foreground(colorDim),
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1),
	}
}

func (s styles) status(status api.StepStatus) (string, lipgloss.Style) {
	switch status {
	case api.StepSucceeded:
		return glyphPassed, s.passed
	case api.StepFailedAPIError, api.StepFailedAssertion:
		return glyphFailed, s.failed
	default:
		return glyphSkipped, s.skipped
	}
}

// Render writes the summary to w. Colour is used only when w is a terminal.
func Render(w io.Writer, summary *processing.Summary) error {
	st := newStyles(lipgloss.NewRenderer(w))

	var b strings.Builder
	b.WriteString(st.title.Render("Run "+summary.RunID) + "\n\n")

	width := 0
	for _, s := range StepOrder {
		width = max(width, len(s))
	}
	for _, s := range StepOrder {
		n := summary.Steps[s]
		glyph, style := st.status(s)
		line := fmt.Sprintf("%s %-*s %5d", glyph, width, s, n)
		if n == 0 {
			style = st.dim
		}
		b.WriteString(style.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("steps %d  chains %d completed, %d partially failed  in %s",
		summary.TotalSteps(),
		summary.Chains[api.ChainCompleted],
		summary.Chains[api.ChainPartiallyFailed],
		summary.Duration.Round(time.Millisecond)))

	_, err := fmt.Fprintln(w, st.panel.Render(b.String()))
	return err
}
