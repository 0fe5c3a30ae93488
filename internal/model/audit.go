package model

import "time"

// StopCandidate is a run selected for cancellation. Elapsed is measured
// against the single "now" sampled for the whole invocation.
type StopCandidate struct {
	Repository   string
	DisplayTitle string
	RunNumber    int
	RunID        int64
	Elapsed      time.Duration
}

// ElapsedSeconds returns the elapsed time as fractional seconds.
func (c StopCandidate) ElapsedSeconds() float64 {
	return c.Elapsed.Seconds()
}

// AuditRow records the outcome of one cancellation attempt. Exactly one
// row exists per StopCandidate.
type AuditRow struct {
	Repository     string  `json:"repository" yaml:"repository"`
	DisplayTitle   string  `json:"display_title" yaml:"display_title"`
	RunNumber      int     `json:"run_number" yaml:"run_number"`
	RunID          int64   `json:"run_id" yaml:"run_id"`
	ElapsedSeconds float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	WasStopped     bool    `json:"was_stopped" yaml:"was_stopped"`
	DryRun         bool    `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Error          string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewAuditRow builds the row for a candidate. err is the cancellation
// failure, if any.
func NewAuditRow(c StopCandidate, stopped bool, err error) AuditRow {
	row := AuditRow{
		Repository:     c.Repository,
		DisplayTitle:   c.DisplayTitle,
		RunNumber:      c.RunNumber,
		RunID:          c.RunID,
		ElapsedSeconds: c.ElapsedSeconds(),
		WasStopped:     stopped,
	}
	if err != nil {
		row.Error = err.Error()
	}
	return row
}
