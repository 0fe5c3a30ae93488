package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/ui"
)

var tableHeaders = []string{"Repository", "Workflow Title", "Run", "Run Id", "Elapsed", "Outcome"}

// Outcome names what happened to a row's run.
func Outcome(row model.AuditRow) string {
	switch {
	case row.DryRun:
		return "dry run"
	case row.WasStopped:
		return "stopped"
	default:
		return "failed"
	}
}

// Elapsed renders seconds as a coarse human duration, e.g. "3 hours".
func Elapsed(seconds float64) string {
	start := time.Unix(0, 0)
	end := start.Add(time.Duration(seconds * float64(time.Second)))
	return strings.TrimSpace(humanize.RelTime(start, end, "", ""))
}

// Table renders rows for a terminal, colouring the outcome column.
func Table(rows []model.AuditRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		Headers(tableHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(ui.ColorPrimary)
			}
			if col == len(tableHeaders)-1 && row >= 0 && row < len(rows) {
				return style.Inherit(ui.OutcomeStyle(Outcome(rows[row])))
			}
			return style
		})

	for _, row := range rows {
		t.Row(
			row.Repository,
			row.DisplayTitle,
			"#"+strconv.Itoa(row.RunNumber),
			strconv.FormatInt(row.RunID, 10),
			Elapsed(row.ElapsedSeconds),
			Outcome(row),
		)
	}

	s := Summarize(rows)
	footer := ui.StyleMuted.Render(fmt.Sprintf("%s candidates, %s stopped, %s failed, %s dry run",
		humanize.Comma(int64(s.Candidates)),
		humanize.Comma(int64(s.Stopped)),
		humanize.Comma(int64(s.Failed)),
		humanize.Comma(int64(s.DryRun)),
	))
	if len(rows) == 0 {
		return footer
	}
	return t.Render() + "\n" + footer
}
