package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/gha-reaper/internal/ui"
)

func RenderStatusBar(status string, failed bool, hints string, width int) string {
	style := ui.StyleMuted
	if failed {
		style = ui.StyleFailure
	}
	left := style.Render("  " + status)
	help := ui.StyleMuted.Render(hints + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
