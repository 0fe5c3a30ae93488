package ui

import (
	"github.com/altinukshini/gha-reaper/internal/model"
)

// Progress messages sent from the reaper goroutine
type RepositoryStartedMsg struct {
	Repository string
}

type RunsFetchedMsg struct {
	Repository string
	Count      int
	Err        error
}

type CandidatesSelectedMsg struct {
	Repository string
	Count      int
	// Skipped counts runs dropped for an unreadable start time.
	Skipped int
}

type RowAppendedMsg struct {
	Row model.AuditRow
}

type ReapDoneMsg struct {
	Err error
}

type StatusMsg struct {
	Text string
}
