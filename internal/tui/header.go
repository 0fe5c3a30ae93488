package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/gha-reaper/internal/ui"
)

// RenderHeader draws the title line with outcome counters on the right.
func RenderHeader(scope string, stopped, failed, dryRun int, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" gha-reaper | %s", scope))

	counters := ui.StyleSuccess.Render(fmt.Sprintf("stopped %d", stopped)) + "  " +
		ui.StyleFailure.Render(fmt.Sprintf("failed %d", failed))
	if dryRun > 0 {
		counters += "  " + ui.StyleWarning.Render(fmt.Sprintf("dry run %d", dryRun))
	}
	counters += " "

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(counters), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + counters)
}
