package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/altinukshini/gha-reaper/internal/model"
)

// Document is the machine-readable report.
type Document struct {
	InvocationID string           `json:"invocation_id" yaml:"invocation_id"`
	GeneratedAt  time.Time        `json:"generated_at" yaml:"generated_at"`
	DryRun       bool             `json:"dry_run" yaml:"dry_run"`
	Summary      Summary          `json:"summary" yaml:"summary"`
	Rows         []model.AuditRow `json:"rows" yaml:"rows"`
}

func NewDocument(meta Meta, rows []model.AuditRow) Document {
	if rows == nil {
		rows = []model.AuditRow{}
	}
	return Document{
		InvocationID: meta.InvocationID,
		GeneratedAt:  meta.GeneratedAt.UTC(),
		DryRun:       meta.DryRun,
		Summary:      Summarize(rows),
		Rows:         rows,
	}
}

func writeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
