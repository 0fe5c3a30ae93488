package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/altinukshini/gha-reaper/internal/model"
)

// Markdown renders rows as a padded GitHub-flavoured markdown table.
func Markdown(rows []model.AuditRow) string {
	return MarkdownTable(Records(rows))
}

// MarkdownTable renders records as a markdown table whose first record
// is the header. Every column is padded to its widest cell. A table
// with no data rows is just the header and separator.
func MarkdownTable(records [][]string) string {
	if len(records) == 0 {
		return ""
	}

	cells := make([][]string, len(records))
	widths := make([]int, len(records[0]))
	for i, record := range records {
		cells[i] = make([]string, len(widths))
		for col := range widths {
			if col < len(record) {
				cells[i][col] = escapeCell(record[col])
			}
			widths[col] = max(widths[col], runewidth.StringWidth(cells[i][col]))
		}
	}

	var b strings.Builder
	writeRow(&b, cells[0], widths)
	b.WriteString("\n|")
	for _, w := range widths {
		b.WriteString(" " + strings.Repeat("-", w) + " |")
	}
	for _, row := range cells[1:] {
		b.WriteString("\n")
		writeRow(&b, row, widths)
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string, widths []int) {
	b.WriteString("|")
	for col, cell := range row {
		b.WriteString(" " + cell + strings.Repeat(" ", widths[col]-runewidth.StringWidth(cell)) + " |")
	}
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
