package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/gha-reaper/internal/model"
	"github.com/altinukshini/gha-reaper/internal/ui"
)

// Bridge forwards reaper progress into a running program. It is safe
// for concurrent use because tea.Program.Send is.
type Bridge struct {
	send func(tea.Msg)
}

func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send}
}

func (b *Bridge) RepositoryStarted(repo string) {
	b.send(ui.RepositoryStartedMsg{Repository: repo})
}

func (b *Bridge) RunsFetched(repo string, count int, err error) {
	b.send(ui.RunsFetchedMsg{Repository: repo, Count: count, Err: err})
}

func (b *Bridge) CandidatesSelected(repo string, count int, errs []error) {
	b.send(ui.CandidatesSelectedMsg{Repository: repo, Count: count, Skipped: len(errs)})
}

func (b *Bridge) RowAppended(row model.AuditRow) {
	b.send(ui.RowAppendedMsg{Row: row})
}
