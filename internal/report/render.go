package report

import (
	"fmt"
	"io"
	"time"

	"github.com/altinukshini/gha-reaper/internal/model"
)

// Meta describes the invocation a report belongs to.
type Meta struct {
	InvocationID string
	GeneratedAt  time.Time
	DryRun       bool
}

// Render writes rows to w in format: markdown, table, json, yaml or html.
func Render(w io.Writer, format string, meta Meta, rows []model.AuditRow) error {
	switch format {
	case "markdown":
		_, err := fmt.Fprintln(w, Markdown(rows))
		return err
	case "table":
		_, err := fmt.Fprintln(w, Table(rows))
		return err
	case "json":
		return writeJSON(w, NewDocument(meta, rows))
	case "yaml":
		return writeYAML(w, NewDocument(meta, rows))
	case "html":
		page, err := HTML(meta, rows)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
