// Package report collects audit rows and renders them for people and
// for GitHub Actions.
package report

import (
	"slices"
	"strconv"
	"sync"

	"github.com/altinukshini/gha-reaper/internal/model"
)

// Headers is the header row of every tabular rendering.
var Headers = []string{
	"Repository",
	"Workflow Title",
	"Run number",
	"Run Id",
	"Elapsed time (seconds)",
	"Was stopped",
}

// Report is an append-only, concurrency-safe collection of audit rows.
type Report struct {
	mu   sync.Mutex
	rows []model.AuditRow
}

func New() *Report {
	return &Report{}
}

func (r *Report) Append(row model.AuditRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
}

// Rows returns a copy of the rows in append order.
func (r *Report) Rows() []model.AuditRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.rows)
}

type Summary struct {
	Candidates int `json:"candidates" yaml:"candidates"`
	Stopped    int `json:"stopped" yaml:"stopped"`
	Failed     int `json:"failed" yaml:"failed"`
	DryRun     int `json:"dry_run" yaml:"dry_run"`
}

func Summarize(rows []model.AuditRow) Summary {
	s := Summary{Candidates: len(rows)}
	for _, row := range rows {
		switch {
		case row.DryRun:
			s.DryRun++
		case row.WasStopped:
			s.Stopped++
		default:
			s.Failed++
		}
	}
	return s
}

// Records renders rows as strings under Headers.
func Records(rows []model.AuditRow) [][]string {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, Headers)
	for _, row := range rows {
		records = append(records, []string{
			row.Repository,
			row.DisplayTitle,
			strconv.Itoa(row.RunNumber),
			strconv.FormatInt(row.RunID, 10),
			strconv.FormatFloat(row.ElapsedSeconds, 'f', -1, 64),
			strconv.FormatBool(row.WasStopped),
		})
	}
	return records
}
